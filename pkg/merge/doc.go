// Package merge implements deep merging of JSON-like configuration values.
//
// A Value is one of a closed set of variants: String, Number, Bool, Null,
// List and Map. Merge combines a base value with an override:
//
//   - two Lists concatenate, base items first
//   - two Maps merge key by key, recursively
//   - anything else takes the override
//
// Merge never mutates its inputs and the result never shares a List or Map
// with either input, so merged values can be handed to concurrent readers.
//
// # Usage
//
//	base := merge.Map{
//	    "paragraph": merge.String("prose"),
//	    "heading":   merge.Map{"1": merge.String("text-4xl")},
//	}
//	override := merge.Map{
//	    "heading": merge.Map{"2": merge.String("text-2xl")},
//	}
//	effective := merge.Maps(base, override)
//	// heading now carries both "1" and "2"
//
// Values decoded by encoding/json or BurntSushi/toml convert with FromAny.
package merge
