package schema

import "sync"

// AASEnvironment is the root type of the Asset Administration Shell
// metamodel.
const AASEnvironment = "AssetAdministrationShellEnvironment"

func str(name string) Property { return Property{Name: name, Kind: KindString} }

func obj(name, typ string) Property { return Property{Name: name, Kind: KindObject, Type: typ} }

func objs(name, typ string) Property {
	return Property{Name: name, Kind: KindObject, Type: typ, List: true}
}

// aasDescriptors lists the AAS metamodel, supertypes ahead of subtypes.
func aasDescriptors() []*Descriptor {
	return []*Descriptor{
		{Name: "Key", Properties: []Property{
			str("type"), {Name: "local", Kind: KindBool}, str("value"), str("idType"),
		}},
		{Name: "Reference", Properties: []Property{objs("keys", "Key")}},
		{Name: "LangString", Properties: []Property{str("language"), str("text")}},
		{Name: "Identifier", Properties: []Property{str("idType"), str("id")}},
		{Name: "AdministrativeInformation", Properties: []Property{
			str("version"), str("revision"),
		}},
		{Name: "IdentifierKeyValuePair", Properties: []Property{
			obj("semanticId", "Reference"), str("key"), str("value"),
			obj("subjectId", "Reference"),
		}},
		{Name: "AssetInformation", Properties: []Property{
			str("assetKind"), obj("globalAssetId", "Reference"),
			objs("specificAssetIds", "IdentifierKeyValuePair"),
			objs("billOfMaterial", "Reference"),
			obj("defaultThumbnail", "File"),
		}},
		{Name: "Qualifier", ModelType: true, Properties: []Property{
			obj("semanticId", "Reference"), str("type"), str("valueType"),
			str("value"), obj("valueId", "Reference"),
		}},
		{Name: "Referable", Abstract: true, ModelType: true, Properties: []Property{
			str("idShort"), str("category"),
			objs("displayName", "LangString"), objs("description", "LangString"),
		}},
		{Name: "Identifiable", Extends: "Referable", Abstract: true, ModelType: true, Properties: []Property{
			obj("identification", "Identifier"),
			obj("administration", "AdministrativeInformation"),
		}},
		{Name: "AssetAdministrationShell", Extends: "Identifiable", ModelType: true, Properties: []Property{
			obj("derivedFrom", "Reference"),
			obj("assetInformation", "AssetInformation"),
			objs("submodels", "Reference"),
		}},
		{Name: "Asset", Extends: "Identifiable", ModelType: true, Properties: []Property{
			str("kind"),
		}},
		{Name: "ConceptDescription", Extends: "Identifiable", ModelType: true, Properties: []Property{
			objs("isCaseOf", "Reference"),
			{Name: "embeddedDataSpecifications", Kind: KindAny, List: true},
		}},
		{Name: "Submodel", Extends: "Identifiable", ModelType: true, Properties: []Property{
			str("kind"), obj("semanticId", "Reference"),
			objs("qualifiers", "Qualifier"),
			objs("submodelElements", "SubmodelElement"),
		}},
		{Name: "SubmodelElement", Extends: "Referable", Abstract: true, ModelType: true, Properties: []Property{
			str("kind"), obj("semanticId", "Reference"),
			objs("qualifiers", "Qualifier"),
		}},
		{Name: "Property", Extends: "SubmodelElement", ModelType: true, Properties: []Property{
			str("valueType"), str("value"), obj("valueId", "Reference"),
		}},
		{Name: "MultiLanguageProperty", Extends: "SubmodelElement", ModelType: true, Properties: []Property{
			objs("value", "LangString"), obj("valueId", "Reference"),
		}},
		{Name: "Range", Extends: "SubmodelElement", ModelType: true, Properties: []Property{
			str("valueType"), str("min"), str("max"),
		}},
		{Name: "File", Extends: "SubmodelElement", ModelType: true, Properties: []Property{
			str("mimeType"), str("value"),
		}},
		{Name: "Blob", Extends: "SubmodelElement", ModelType: true, Properties: []Property{
			str("mimeType"), str("value"),
		}},
		{Name: "ReferenceElement", Extends: "SubmodelElement", ModelType: true, Properties: []Property{
			obj("value", "Reference"),
		}},
		{Name: "SubmodelElementCollection", Extends: "SubmodelElement", ModelType: true, Properties: []Property{
			{Name: "ordered", Kind: KindBool},
			{Name: "allowDuplicates", Kind: KindBool},
			objs("value", "SubmodelElement"),
		}},
		{Name: AASEnvironment, Properties: []Property{
			objs("assetAdministrationShells", "AssetAdministrationShell"),
			objs("assets", "Asset"),
			objs("submodels", "Submodel"),
			objs("conceptDescriptions", "ConceptDescription"),
		}},
	}
}

//nolint:gochecknoglobals
var aas = sync.OnceValue(func() []*Descriptor { return aasDescriptors() })

// Default returns a new registry holding the AAS metamodel, rooted at
// [AASEnvironment].
func Default() *Registry {
	r, err := NewRegistry(AASEnvironment, aas()...)
	if err != nil {
		panic(err) // the table is ordered supertypes first
	}

	return r
}
