package util

import (
	"encoding/binary"
	"io"
)

// ReadElement decodes a single fixed-width wire primitive from r into element,
// which must be a pointer to one of the supported types. This is the building
// block WriteElements/ReadElements use for header and disk-position framing.
func ReadElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *uint8:
		rv, err := BinarySerializer.Uint8(r)
		if err != nil {
			return err
		}
		*e = rv
		return nil
	case *uint16:
		rv, err := BinarySerializer.Uint16(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = rv
		return nil
	case *int32:
		rv, err := BinarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = int32(rv)
		return nil
	case *uint32:
		rv, err := BinarySerializer.Uint32(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = rv
		return nil
	case *int64:
		rv, err := BinarySerializer.Uint64(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = int64(rv)
		return nil
	case *uint64:
		rv, err := BinarySerializer.Uint64(r, binary.LittleEndian)
		if err != nil {
			return err
		}
		*e = rv
		return nil
	case *bool:
		rv, err := BinarySerializer.Uint8(r)
		if err != nil {
			return err
		}
		*e = rv != 0x00
		return nil
	case *[4]byte:
		_, err := io.ReadFull(r, e[:])
		return err
	case *Hash:
		_, err := io.ReadFull(r, e[:])
		return err
	}
	return binary.Read(r, binary.LittleEndian, element)
}

// ReadElements decodes each of elements in order, stopping at the first error.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		if err := ReadElement(r, element); err != nil {
			return err
		}
	}
	return nil
}

// WriteElement encodes a single fixed-width wire primitive to w.
func WriteElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint8:
		return BinarySerializer.PutUint8(w, e)
	case uint16:
		return BinarySerializer.PutUint16(w, binary.LittleEndian, e)
	case int32:
		return BinarySerializer.PutUint32(w, binary.LittleEndian, uint32(e))
	case uint32:
		return BinarySerializer.PutUint32(w, binary.LittleEndian, e)
	case int64:
		return BinarySerializer.PutUint64(w, binary.LittleEndian, uint64(e))
	case uint64:
		return BinarySerializer.PutUint64(w, binary.LittleEndian, e)
	case bool:
		if e {
			return BinarySerializer.PutUint8(w, 0x01)
		}
		return BinarySerializer.PutUint8(w, 0x00)
	case [4]byte:
		_, err := w.Write(e[:])
		return err
	case *Hash:
		_, err := w.Write(e[:])
		return err
	}
	return binary.Write(w, binary.LittleEndian, element)
}

// WriteElements encodes each of elements in order, stopping at the first error.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		if err := WriteElement(w, element); err != nil {
			return err
		}
	}
	return nil
}
