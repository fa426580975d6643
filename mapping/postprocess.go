package mapping

import (
	"context"
	"log/slog"

	"github.com/ardnew/docxform/log"
	"github.com/ardnew/docxform/schema"
)

// Key values of the submodel references added by [AutoWireSubmodels].
const (
	KeyTypeSubmodel = "Submodel"
	IDTypeCustom    = "Custom"
)

// AutoWireSubmodels gives every asset administration shell without submodel
// references a reference to each identified submodel of the environment.
// Roots of other types are left unchanged.
func AutoWireSubmodels(ctx context.Context, reg *schema.Registry, root *schema.Instance) error {
	if root.Type().Name != schema.AASEnvironment {
		return nil
	}

	var ids []string

	for _, sm := range instances(root, "submodels") {
		ident, ok := sm.Get("identification")
		if !ok {
			continue
		}

		if x, ok := ident.(*schema.Instance); ok {
			if id, ok := x.Get("id"); ok {
				ids = append(ids, id.(string))
			}
		}
	}

	if len(ids) == 0 {
		return nil
	}

	refType, err := reg.Lookup("Reference")
	if err != nil {
		return err
	}

	keyType, err := reg.Lookup("Key")
	if err != nil {
		return err
	}

	for _, shell := range instances(root, "assetAdministrationShells") {
		if len(instances(shell, "submodels")) > 0 {
			continue
		}

		refs := make([]any, 0, len(ids))

		for _, id := range ids {
			key, err := keyType.FromStringMap(map[string]string{
				"type":   KeyTypeSubmodel,
				"idType": IDTypeCustom,
				"value":  id,
			})
			if err != nil {
				return err
			}

			ref := refType.New()
			if err := ref.Set("keys", []any{key}); err != nil {
				return err
			}

			refs = append(refs, ref)
		}

		if err := shell.Set("submodels", refs); err != nil {
			return err
		}

		log.FromContext(ctx).DebugContext(ctx, "submodels wired to shell",
			slog.Any("shell", shell),
			slog.Int("submodels", len(refs)),
		)
	}

	return nil
}

// instances returns the instances held by the list property named name.
func instances(x *schema.Instance, name string) []*schema.Instance {
	v, _ := x.Get(name)
	list, _ := v.([]any)

	out := make([]*schema.Instance, 0, len(list))

	for _, e := range list {
		if i, ok := e.(*schema.Instance); ok {
			out = append(out, i)
		}
	}

	return out
}
