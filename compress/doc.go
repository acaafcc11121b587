// Package compress provides the payload codecs used by the block package.
//
// A block payload is a run of FAST-encoded messages. FAST already removes most redundancy
// field by field, so general-purpose compression pays off mainly on text-heavy templates and
// on long runs of similar messages.
//
// Supported algorithms:
//   - None: payload stored as is
//   - Zstd: best ratio; pure Go by default, cgo libzstd with the gozstd build tag
//   - S2: fast, Snappy-compatible
//   - LZ4: fastest decompression
//
// All built-in codecs are stateless values backed by pooled encoders and are safe for
// concurrent use:
//
//	codec, err := compress.GetCodec(format.CompressionS2)
//	if err != nil {
//		return err
//	}
//	packed, err := codec.Compress(payload)
//	...
//	payload, err = codec.Decompress(packed, len(payload))
package compress
