// Package registry loads font descriptors and their font files and serves
// them as immutable snapshots.
//
// Each font lives in its own directory under the fonts root with a
// config.json descriptor:
//
//	{
//	  "id": "noto-sans-sc",
//	  "version": "2.004",
//	  "font_family": "Noto Sans SC",
//	  "license": "OFL-1.1",
//	  "fallback": ["noto-emoji"],
//	  "file": "NotoSansSC-Regular.ttf",
//	  "name": {"en": "Noto Sans SC", "zh-Hans": "思源黑体"}
//	}
//
// A Snapshot is never mutated. Registry.Reload builds a complete new
// snapshot and publishes it with a single atomic pointer swap, so readers
// always see one consistent descriptor set. Fallback graphs with cycles,
// duplicate ids or references to unknown fonts are rejected when a
// snapshot is built.
package registry
