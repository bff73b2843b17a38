package trie

import (
	"errors"
	"fmt"
)

var errDecodeInvalid = errors.New("trie: invalid encoded node")

// decodeNode parses a serialized trie node. hash is the reference the node
// was loaded under, cached on the result.
func decodeNode(hash hashNode, data []byte) (node, error) {
	if len(data) == 0 {
		return nil, errDecodeInvalid
	}
	elems, err := splitList(data)
	if err != nil {
		return nil, fmt.Errorf("trie node decode: %w", err)
	}
	switch len(elems) {
	case 2:
		return decodeShort(hash, elems)
	case 17:
		return decodeFull(hash, elems)
	default:
		return nil, fmt.Errorf("%w: %d list elements", errDecodeInvalid, len(elems))
	}
}

func decodeShort(hash hashNode, elems [][]byte) (node, error) {
	key := compactToHex(elems[0])
	n := &shortNode{Key: key, flags: nodeFlag{hash: hash}}
	if hasTerminator(key) {
		n.Val = valueNode(elems[1])
		return n, nil
	}
	child, err := decodeChildRef(elems[1])
	if err != nil {
		return nil, err
	}
	n.Val = child
	return n, nil
}

func decodeFull(hash hashNode, elems [][]byte) (node, error) {
	n := &fullNode{flags: nodeFlag{hash: hash}}
	for i := 0; i < 16; i++ {
		if len(elems[i]) == 0 {
			continue
		}
		child, err := decodeChildRef(elems[i])
		if err != nil {
			return nil, err
		}
		n.Children[i] = child
	}
	if len(elems[16]) > 0 {
		n.Children[16] = valueNode(elems[16])
	}
	return n, nil
}

// decodeChildRef parses a child slot: a 32-byte string is a hash reference,
// anything else is an embedded inline node.
func decodeChildRef(data []byte) (node, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) == 32 {
		return hashNode(data), nil
	}
	return decodeNode(nil, data)
}

// splitList parses a top-level RLP list into its element payloads. String
// elements yield their content; nested lists yield their full encoding so
// inline nodes can be decoded recursively.
func splitList(data []byte) ([][]byte, error) {
	payload, rest, err := listPayload(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: trailing bytes", errDecodeInvalid)
	}
	var elems [][]byte
	for len(payload) > 0 {
		var elem []byte
		elem, payload, err = nextElement(payload)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}
	return elems, nil
}

// listPayload strips the list header from data, returning the payload and
// any bytes following the list.
func listPayload(data []byte) (payload, rest []byte, err error) {
	if len(data) == 0 {
		return nil, nil, errDecodeInvalid
	}
	prefix := data[0]
	switch {
	case prefix < 0xc0:
		return nil, nil, fmt.Errorf("%w: not a list (prefix 0x%02x)", errDecodeInvalid, prefix)
	case prefix <= 0xf7:
		n := int(prefix - 0xc0)
		if 1+n > len(data) {
			return nil, nil, errDecodeInvalid
		}
		return data[1 : 1+n], data[1+n:], nil
	default:
		lenLen := int(prefix - 0xf7)
		if 1+lenLen > len(data) {
			return nil, nil, errDecodeInvalid
		}
		n := bigEndianInt(data[1 : 1+lenLen])
		end := 1 + lenLen + n
		if end > len(data) || n < 0 {
			return nil, nil, errDecodeInvalid
		}
		return data[1+lenLen : end], data[end:], nil
	}
}

// nextElement reads one RLP element off the front of payload.
func nextElement(payload []byte) (content, rest []byte, err error) {
	prefix := payload[0]
	switch {
	case prefix <= 0x7f:
		return payload[:1], payload[1:], nil
	case prefix == 0x80:
		return nil, payload[1:], nil
	case prefix <= 0xb7:
		n := int(prefix - 0x80)
		if 1+n > len(payload) {
			return nil, nil, errDecodeInvalid
		}
		return payload[1 : 1+n], payload[1+n:], nil
	case prefix <= 0xbf:
		lenLen := int(prefix - 0xb7)
		if 1+lenLen > len(payload) {
			return nil, nil, errDecodeInvalid
		}
		n := bigEndianInt(payload[1 : 1+lenLen])
		end := 1 + lenLen + n
		if end > len(payload) || n < 0 {
			return nil, nil, errDecodeInvalid
		}
		return payload[1+lenLen : end], payload[end:], nil
	default:
		// Nested list: keep the header so the inline node decodes whole.
		var inner []byte
		inner, rest, err = listPayload(payload)
		if err != nil {
			return nil, nil, err
		}
		headerLen := len(payload) - len(rest) - len(inner)
		return payload[:headerLen+len(inner)], rest, nil
	}
}

// bigEndianInt decodes a big-endian length field.
func bigEndianInt(b []byte) int {
	var n int
	for _, v := range b {
		n = n<<8 | int(v)
	}
	return n
}
