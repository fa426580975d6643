package profile

import "testing"

func TestStart_WithoutMode_IsNoop(t *testing.T) {
	s := Start(WithPath(t.TempDir()), WithQuiet(true))

	if _, ok := s.(ignore); !ok {
		t.Fatalf("expected no-op stopper, got %T", s)
	}

	s.Stop()
}

func TestOptions_ApplyInOrder(t *testing.T) {
	var s settings

	for _, opt := range []Option{
		WithMode("cpu"), WithPath("/a"), WithQuiet(true), WithMode("heap"),
	} {
		s = opt(s)
	}

	if s.mode != "heap" || s.path != "/a" || !s.quiet {
		t.Errorf("unexpected settings: %+v", s)
	}
}

func TestStart_UnknownMode_IsNoop(t *testing.T) {
	s := Start(WithMode("bogus"), WithQuiet(true))

	if _, ok := s.(ignore); !ok {
		t.Fatalf("expected no-op stopper for unknown mode, got %T", s)
	}
}
