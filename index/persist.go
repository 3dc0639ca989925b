package index

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/regindex/suffixient/internal/ctrie"
)

// Wire format, grounded on the teacher's archive.go stage-framed layout:
//
//	magic[4]  = "SFXT"
//	version   = uint16 little-endian
//	stageCnt  = uint16 little-endian
//	repeat stageCnt times:
//	  nameLen  = uint8
//	  dataLen  = uint32 little-endian
//	  name     = nameLen bytes
//	  payload  = dataLen bytes
//
// Required stages: "params" (window0), "text" (T verbatim), "trie_keys"
// (every stored key/value pair). The trie's cuckoo child map and each
// branching node's micro-trie handle map are not themselves persisted —
// Load rebuilds them deterministically by re-Insert-ing every key, which
// reproduces identical keys→values and identical prefix-query answers
// (spec.md §8 property 4) without duplicating derived index structures
// on disk.
const (
	indexMagic   = "SFXT"
	indexVersion = uint16(1)

	stageParams = "params"
	stageText   = "text"
	stageKeys   = "trie_keys"

	maxStages       = 8
	maxStagePayload = 1 << 31
)

type stage struct {
	name    string
	payload []byte
}

func writeStage(w io.Writer, name string, payload []byte) (int64, error) {
	if len(name) == 0 || len(name) > 255 {
		return 0, fmt.Errorf("index: invalid stage name length: %d", len(name))
	}
	var total int64
	if err := binary.Write(w, binary.LittleEndian, uint8(len(name))); err != nil {
		return total, err
	}
	total += 1
	if err := binary.Write(w, binary.LittleEndian, uint32(len(payload))); err != nil {
		return total, err
	}
	total += 4
	n, err := w.Write([]byte(name))
	total += int64(n)
	if err != nil {
		return total, err
	}
	n, err = w.Write(payload)
	total += int64(n)
	return total, err
}

func readStage(r io.Reader) (stage, int64, error) {
	var total int64
	var nameLen uint8
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return stage{}, total, err
	}
	total += 1
	if nameLen == 0 {
		return stage{}, total, fmt.Errorf("index: stage name length must be > 0")
	}
	var dataLen uint32
	if err := binary.Read(r, binary.LittleEndian, &dataLen); err != nil {
		return stage{}, total, err
	}
	total += 4
	if dataLen > maxStagePayload {
		return stage{}, total, fmt.Errorf("index: stage payload too large: %d", dataLen)
	}
	name := make([]byte, nameLen)
	n, err := io.ReadFull(r, name)
	total += int64(n)
	if err != nil {
		return stage{}, total, err
	}
	payload := make([]byte, dataLen)
	n, err = io.ReadFull(r, payload)
	total += int64(n)
	if err != nil {
		return stage{}, total, err
	}
	return stage{name: string(name), payload: payload}, total, nil
}

func encodeKeys(t *ctrie.Trie) []byte {
	var out []byte
	lenBuf := make([]byte, 4)
	valBuf := make([]byte, 8)
	t.Each(func(key []byte, value int64) {
		binary.LittleEndian.PutUint32(lenBuf, uint32(len(key)))
		out = append(out, lenBuf...)
		out = append(out, key...)
		binary.LittleEndian.PutUint64(valBuf, uint64(value))
		out = append(out, valBuf...)
	})
	return out
}

func decodeKeys(payload []byte) (*ctrie.Trie, error) {
	t := ctrie.New()
	pos := 0
	for pos < len(payload) {
		if pos+4 > len(payload) {
			return nil, fmt.Errorf("index: truncated trie_keys stage at offset %d", pos)
		}
		keyLen := int(binary.LittleEndian.Uint32(payload[pos:]))
		pos += 4
		if pos+keyLen+8 > len(payload) {
			return nil, fmt.Errorf("index: truncated trie_keys entry at offset %d", pos)
		}
		key := payload[pos : pos+keyLen]
		pos += keyLen
		value := int64(binary.LittleEndian.Uint64(payload[pos:]))
		pos += 8
		if err := insertOrIgnoreDuplicate(t, key, value); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Store serializes idx to w using the stage-framed layout described
// above.
func (idx *Index) Store(w io.Writer) (int64, error) {
	var total int64
	n, err := w.Write([]byte(indexMagic))
	total += int64(n)
	if err != nil {
		return total, err
	}
	if err := binary.Write(w, binary.LittleEndian, indexVersion); err != nil {
		return total, err
	}
	total += 2

	stages := []stage{
		{name: stageParams, payload: encodeUint32(uint32(idx.window0))},
		{name: stageText, payload: idx.text},
		{name: stageKeys, payload: encodeKeys(idx.trie)},
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(stages))); err != nil {
		return total, err
	}
	total += 2
	for _, s := range stages {
		n, err := writeStage(w, s.name, s.payload)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Load deserializes an Index written by Store. It rejects mismatched
// magic or version, per spec.md §6's "load(path): ... must reject
// mismatched magic/header".
func Load(r io.Reader) (*Index, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("index: read magic: %w", err)
	}
	if string(magic[:]) != indexMagic {
		return nil, fmt.Errorf("index: invalid magic %q", magic[:])
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("index: read version: %w", err)
	}
	if version != indexVersion {
		return nil, fmt.Errorf("index: unsupported version %d", version)
	}
	var stageCount uint16
	if err := binary.Read(r, binary.LittleEndian, &stageCount); err != nil {
		return nil, fmt.Errorf("index: read stage count: %w", err)
	}
	if stageCount == 0 || stageCount > maxStages {
		return nil, fmt.Errorf("index: invalid stage count %d", stageCount)
	}

	byName := map[string][]byte{}
	for i := 0; i < int(stageCount); i++ {
		s, _, err := readStage(r)
		if err != nil {
			return nil, fmt.Errorf("index: read stage %d: %w", i, err)
		}
		byName[s.name] = s.payload
	}

	paramsPayload, ok := byName[stageParams]
	if !ok || len(paramsPayload) != 4 {
		return nil, fmt.Errorf("index: missing or malformed %q stage", stageParams)
	}
	window0 := int(binary.LittleEndian.Uint32(paramsPayload))

	text, ok := byName[stageText]
	if !ok {
		return nil, fmt.Errorf("index: missing %q stage", stageText)
	}

	keysPayload, ok := byName[stageKeys]
	if !ok {
		return nil, fmt.Errorf("index: missing %q stage", stageKeys)
	}
	trie, err := decodeKeys(keysPayload)
	if err != nil {
		return nil, err
	}

	return finishBuild(text, trie, []Option{WithWindow0(window0)})
}

func encodeUint32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}
