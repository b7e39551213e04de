package shapecheck

// Package shapecheck provides:
//
// - A minimal constraint language for decoded configuration records (Object, Union, Field)
// - A fail-fast, declaration-ordered validator with root-anchored error paths
// - Cross-field dependency rules (Field.DependsOn) and tag-discriminated unions
// - A collect mode (ValidateAll) returning every violation as Issues
//
// Design policy:
// - Keep the engine in the root package; decoding lives under source/ and internal/.
// - Constraints are plain data declared once and shared; the engine holds no global state.
// - Messages are rendered through i18n so the CLI can switch languages.
//
// Typical usage:
//
//	rec, err := source.LoadFile("entando.yaml", source.Options{})
//	if err := shapecheck.Validate(rec, bundle.DescriptorConstraints); err != nil {
//		ve, _ := shapecheck.AsValidationError(err)
//		fmt.Println(ve.Message, ve.Location())
//	}
//
