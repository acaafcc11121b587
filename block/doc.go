// Package block frames runs of FAST messages for storage or batch transport.
//
// FAST streams carry no message boundaries: a decoder must consume every message in order to
// find the next one. A block groups a run of encoded messages behind a fixed header holding
// the message count, the payload lengths, an xxHash64 checksum and the payload codec, so
// captures can be split, verified and compressed without decoding them.
//
// Writing:
//
//	w, _ := block.NewWriter(block.WithCompression(format.CompressionZstd))
//	defer w.Release()
//	for _, m := range msgs {
//		if err := w.Encode(enc, templateID, m); err != nil {
//			return err
//		}
//	}
//	frame, err := w.AppendFrame(nil)
//
// Reading:
//
//	r, _ := block.NewReader(frames)
//	for {
//		b, err := r.Next()
//		if errors.Is(err, io.EOF) {
//			break
//		}
//		for msg, err := range b.Messages(dec) {
//			...
//		}
//	}
//
// The encoder and decoder sessions span blocks: the dictionary is not reset at a block
// boundary unless the caller resets it.
package block
