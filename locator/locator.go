// Package locator parses the locator record: a protobuf-encoded list of
// per-container file paths (§4.8, §6). No .proto schema ships with this
// repo — it is an external collaborator's wire format — so this package
// reads the wire encoding directly with protowire rather than generated
// bindings.
package locator

import (
	"os"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/aconfig/aconfig-storage/storage"
)

// Entry is one container's set of storage file paths plus the locator
// metadata for that container (§3's Locator record entity).
type Entry struct {
	Version    uint32
	Container  string
	PackageMap string
	FlagMap    string
	FlagVal    string
	FlagInfo   string
	Timestamp  uint64
}

// Wire field numbers for the top-level record and each Entry, fixed by the
// external locator format this package reads (§6).
const (
	fieldEntries = 1 // repeated Entry, top level

	fieldVersion    = 1
	fieldContainer  = 2
	fieldPackageMap = 3
	fieldFlagMap    = 4
	fieldFlagVal    = 5
	fieldFlagInfo   = 6
	fieldTimestamp  = 7
)

// Parse decodes the full list of entries from a locator record's raw bytes.
func Parse(data []byte) ([]Entry, error) {
	var entries []Entry
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, storage.ErrKind(storage.KindProtobufParseFail)
		}
		data = data[n:]

		if num != fieldEntries || typ != protowire.BytesType {
			skip := protowire.ConsumeFieldValue(num, typ, data)
			if skip < 0 {
				return nil, storage.ErrKind(storage.KindProtobufParseFail)
			}
			data = data[skip:]
			continue
		}

		raw, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, storage.ErrKind(storage.KindProtobufParseFail)
		}
		data = data[n:]

		entry, err := parseEntry(raw)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseEntry(data []byte) (Entry, error) {
	var e Entry
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Entry{}, storage.ErrKind(storage.KindProtobufParseFail)
		}
		data = data[n:]

		switch num {
		case fieldVersion:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Entry{}, storage.ErrKind(storage.KindProtobufParseFail)
			}
			e.Version = uint32(v)
			data = data[n:]
		case fieldContainer:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return Entry{}, storage.ErrKind(storage.KindProtobufParseFail)
			}
			e.Container = s
			data = data[n:]
		case fieldPackageMap:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return Entry{}, storage.ErrKind(storage.KindProtobufParseFail)
			}
			e.PackageMap = s
			data = data[n:]
		case fieldFlagMap:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return Entry{}, storage.ErrKind(storage.KindProtobufParseFail)
			}
			e.FlagMap = s
			data = data[n:]
		case fieldFlagVal:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return Entry{}, storage.ErrKind(storage.KindProtobufParseFail)
			}
			e.FlagVal = s
			data = data[n:]
		case fieldFlagInfo:
			s, n := protowire.ConsumeString(data)
			if n < 0 {
				return Entry{}, storage.ErrKind(storage.KindProtobufParseFail)
			}
			e.FlagInfo = s
			data = data[n:]
		case fieldTimestamp:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return Entry{}, storage.ErrKind(storage.KindProtobufParseFail)
			}
			e.Timestamp = v
			data = data[n:]
		default:
			skip := protowire.ConsumeFieldValue(num, typ, data)
			if skip < 0 {
				return Entry{}, storage.ErrKind(storage.KindProtobufParseFail)
			}
			data = data[skip:]
		}
	}
	return e, nil
}

// Encode serializes entries back to the wire format Parse reads, used by
// tests and by whatever produces the locator record.
func Encode(entries []Entry) []byte {
	var buf []byte
	for _, e := range entries {
		var entryBuf []byte
		entryBuf = protowire.AppendTag(entryBuf, fieldVersion, protowire.VarintType)
		entryBuf = protowire.AppendVarint(entryBuf, uint64(e.Version))
		entryBuf = protowire.AppendTag(entryBuf, fieldContainer, protowire.BytesType)
		entryBuf = protowire.AppendString(entryBuf, e.Container)
		entryBuf = protowire.AppendTag(entryBuf, fieldPackageMap, protowire.BytesType)
		entryBuf = protowire.AppendString(entryBuf, e.PackageMap)
		entryBuf = protowire.AppendTag(entryBuf, fieldFlagMap, protowire.BytesType)
		entryBuf = protowire.AppendString(entryBuf, e.FlagMap)
		entryBuf = protowire.AppendTag(entryBuf, fieldFlagVal, protowire.BytesType)
		entryBuf = protowire.AppendString(entryBuf, e.FlagVal)
		entryBuf = protowire.AppendTag(entryBuf, fieldFlagInfo, protowire.BytesType)
		entryBuf = protowire.AppendString(entryBuf, e.FlagInfo)
		entryBuf = protowire.AppendTag(entryBuf, fieldTimestamp, protowire.VarintType)
		entryBuf = protowire.AppendVarint(entryBuf, e.Timestamp)

		buf = protowire.AppendTag(buf, fieldEntries, protowire.BytesType)
		buf = protowire.AppendBytes(buf, entryBuf)
	}
	return buf
}

// Lookup reads the locator record at path and returns the entry for
// container. An unknown container yields StorageFileNotFound (§6).
func Lookup(path, container string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, storage.Wrap(storage.KindFileReadFail, "read locator record", err)
	}
	entries, err := Parse(data)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Container == container {
			return e, nil
		}
	}
	return Entry{}, storage.ErrKind(storage.KindStorageFileNotFound)
}
