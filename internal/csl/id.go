package csl

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
)

// IDNamespace is the UUID namespace for item identifiers.
var IDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matsen/nbib/csl-item"))

// ContentID derives the identifier of an item from its field content. The
// result is a name-based (SHA-1) UUID string and depends only on the three
// field slots, each encoded in its own fixed position. The item's current
// ID is not part of the input.
func ContentID(it Item) string {
	var b bytes.Buffer

	writeString(&b, "fields")
	writeLen(&b, len(it.Fields))
	for _, f := range it.Fields {
		writeString(&b, f.Key)
		writeString(&b, f.Value)
	}

	writeString(&b, "names")
	writeLen(&b, len(it.Names))
	for _, n := range it.Names {
		writeString(&b, n.Key)
		if n.Full {
			b.WriteByte(1)
		} else {
			b.WriteByte(0)
		}
		np := n.Parts
		for _, p := range []*string{
			np.Family, np.Given, np.DroppingParticle, np.NonDroppingParticle,
			np.Suffix, np.CommaSuffix, np.StaticOrdering, np.Literal, np.ParseNames,
		} {
			writeOptional(&b, p)
		}
	}

	writeString(&b, "dates")
	writeLen(&b, len(it.Dates))
	for _, d := range it.Dates {
		writeString(&b, d.Key)
		dp := d.Parts
		for _, p := range []*string{dp.DateParts, dp.Season, dp.Circa, dp.Literal, dp.Raw, dp.EDTF} {
			writeOptional(&b, p)
		}
	}

	return uuid.NewSHA1(IDNamespace, b.Bytes()).String()
}

func writeLen(b *bytes.Buffer, n int) {
	var buf [binary.MaxVarintLen64]byte
	b.Write(buf[:binary.PutUvarint(buf[:], uint64(n))])
}

func writeString(b *bytes.Buffer, s string) {
	writeLen(b, len(s))
	b.WriteString(s)
}

func writeOptional(b *bytes.Buffer, s *string) {
	if s == nil {
		b.WriteByte(0)
		return
	}
	b.WriteByte(1)
	writeString(b, *s)
}
