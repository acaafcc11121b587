// Package codec drives whole-message FAST decoding and encoding.
//
// A message on the wire is a presence map, an optional template id and the template body.
// The first presence map bit says whether the template id is present; an omitted id repeats
// the previous message's. Decoder and Encoder implement the template.Decoder and
// template.Encoder facades, so nested segments, template references and fatal reporting all
// flow through them.
//
// Basic usage:
//
//	reg := template.NewRegistry()
//	_ = reg.Add(quote)
//	_ = reg.Finalize()
//
//	enc, _ := codec.NewEncoder(reg)
//	dst := stream.NewDestination()
//	defer dst.Release()
//	_ = enc.EncodeMessage(dst, quote.ID(), fields)
//
//	dec, _ := codec.NewDecoder(reg)
//	msg, _ := dec.DecodeMessage(stream.NewSource(dst.Bytes()))
//
// Decoders and encoders keep per-session dictionary state and are not safe for concurrent use.
package codec
