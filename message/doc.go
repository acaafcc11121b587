// Package message provides the output side of decoding: the Builder interfaces the template
// engine writes into, and FieldSet, the concrete order-preserving container of decoded fields.
//
// A decode pass moves a FieldSet through three states: empty, building (AddField only) and
// closed, when it is handed to the consumer as a read-only message. Reuse a FieldSet across
// decodes with Clear.
//
//	fs := message.NewFieldSet(16)
//	fs.AddField(field.NewIdentity("size", ""), field.NewUInt32(100))
//	if v, ok := fs.Field("size"); ok {
//	    n, _ := v.AsUInt32()
//	}
package message
