// Package document renders named presets into single-page PDF documents.
//
// Presets:
//
//   - tree, sky, logo: an A4 page with the preset image centered at 200pt width
//   - hello: an A4 text page with a link annotation and a stroked bezier path
//
// Image presets read their bytes from an AssetSource. PNG samples are
// re-encoded as RGB with FlateDecode and any transparency goes into a separate
// DeviceGray soft mask. JPEG data is embedded unchanged with DCTDecode. Any
// other format is a producer error.
//
// Unknown keys fail with ErrNotFound. Output is deterministic: the same preset
// and asset always produce the same bytes.
package document
