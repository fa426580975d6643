package mapping

// CheckInputs returns a [*MissingInputsError] naming every parameter
// declared by the header of spec that has no value in inputs.
func CheckInputs(spec *Specification, inputs map[string]string) error {
	var missing []string

	for _, p := range spec.Header.Parameters {
		if _, ok := inputs[p.Name]; !ok {
			missing = append(missing, p.Name)
		}
	}

	if len(missing) > 0 {
		return &MissingInputsError{Names: missing}
	}

	return nil
}
