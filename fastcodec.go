// Package fastcodec is a FAST (FIX Adapted for STreaming) 1.1 template engine: it decodes
// and encodes streams of compact messages against a set of templates that describe each
// message's fields and the operator used to transmit each field.
//
// # Core Features
//
//   - Templates built in code from instructions (integers, decimals, strings, byte vectors,
//     groups, sequences, static and dynamic template references)
//   - Field operators: constant, default, copy, increment, delta and tail, backed by a
//     per-session dictionary of previous values
//   - Presence maps computed at finalize time; static references are inlined into the
//     referencing template's presence map
//   - Optional block framing with xxHash64 checksums and None, Zstd, S2 or LZ4 compression
//
// # Basic Usage
//
// Defining templates:
//
//	quote := template.NewTemplate(1, "Quote", "")
//	quote.SetApplicationType("Quote", "")
//	quote.AddInstruction(template.NewDecimal(fastcodec.FieldID("price"), template.Optional, template.Delta()))
//	quote.AddInstruction(template.NewUInt32(fastcodec.FieldID("size"), template.Mandatory, template.NoOperator()))
//
//	reg, err := fastcodec.NewRegistry(quote)
//
// Encoding and decoding:
//
//	enc, dec, err := fastcodec.NewSession(reg)
//
//	dst := stream.NewDestination()
//	defer dst.Release()
//	err = enc.EncodeMessage(dst, 1, fields)
//
//	msg, err := dec.DecodeMessage(stream.NewSource(dst.Bytes()))
//	price, ok := msg.Fields.Field("price")
//
// Encoder and decoder each own one session: the dictionary and the last template id. Use
// one pair per stream; a finalized registry may be shared by any number of sessions.
//
// # Package Structure
//
// This package wraps the common setup. The engine lives in the template package, the
// message-level session in codec, and the framing in block.
package fastcodec

import (
	"fmt"

	"github.com/arloliu/fastcodec/block"
	"github.com/arloliu/fastcodec/codec"
	"github.com/arloliu/fastcodec/field"
	"github.com/arloliu/fastcodec/format"
	"github.com/arloliu/fastcodec/template"
)

var defaultBlockOptions = []block.WriterOption{
	block.WithCompression(format.CompressionS2),
}

// FieldID returns the identity of a field named name in the default namespace.
func FieldID(name string) *field.Identity {
	return field.NewIdentity(name, "")
}

// NewRegistry registers templates and finalizes the registry.
//
// Parameters:
//   - templates: Templates to register; ids and names must be unique
//
// Returns:
//   - *template.Registry: Finalized registry, ready for NewSession
//   - error: Duplicate templates, unresolved references or invalid operators
func NewRegistry(templates ...*template.Template) (*template.Registry, error) {
	return NewRegistryWithOptions(nil, templates...)
}

// NewRegistryWithOptions is NewRegistry with registry options such as template.WithLogger
// or template.WithStrictCycles.
func NewRegistryWithOptions(opts []template.RegistryOption, templates ...*template.Template) (*template.Registry, error) {
	reg := template.NewRegistry(opts...)
	for _, t := range templates {
		if err := reg.Add(t); err != nil {
			return nil, err
		}
	}
	if err := reg.Finalize(); err != nil {
		return nil, err
	}

	return reg, nil
}

// NewSession creates a matching encoder and decoder for reg, both configured with opts.
//
// Returns:
//   - *codec.Encoder: Encoder with an empty dictionary
//   - *codec.Decoder: Decoder with an empty dictionary
//   - error: Unfinalized registry or invalid option
func NewSession(reg *template.Registry, opts ...codec.Option) (*codec.Encoder, *codec.Decoder, error) {
	enc, err := codec.NewEncoder(reg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("new encoder: %w", err)
	}
	dec, err := codec.NewDecoder(reg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("new decoder: %w", err)
	}

	return enc, dec, nil
}

// NewBlockWriter creates a block writer with custom options.
func NewBlockWriter(opts ...block.WriterOption) (*block.Writer, error) {
	return block.NewWriter(opts...)
}

// NewDefaultBlockWriter creates a block writer using S2 compression and little-endian
// headers, a good fit for captures that are written once and scanned often.
func NewDefaultBlockWriter() (*block.Writer, error) {
	return block.NewWriter(defaultBlockOptions...)
}

// NewBlockReader creates a reader over the frames in data.
func NewBlockReader(data []byte, opts ...block.ReaderOption) (*block.Reader, error) {
	return block.NewReader(data, opts...)
}
