package state

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// 规范化的 CBOR 编码选项：相同记录总是得到相同字节
var encOptions = cbor.EncOptions{
	Sort:        cbor.SortCanonical,
	IndefLength: cbor.IndefLengthForbidden,
}

var em, _ = encOptions.EncMode()

var decOptions = cbor.DecOptions{
	// 限制容器大小，防止损坏的数据耗尽内存
	MaxArrayElements: 1 << 16,
	MaxMapPairs:      1 << 16,
	MaxNestedLevels:  16,
	IndefLength:      cbor.IndefLengthForbidden,
	DupMapKey:        cbor.DupMapKeyEnforcedAPF,
}

var dm, _ = decOptions.DecMode()

// Encode 把记录编码为 CBOR (供 redis / s3 后端使用)
func Encode(r Record) ([]byte, error) {
	data, err := em.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode state: %w", err)
	}
	return data, nil
}

// Decode 解码 CBOR 记录
func Decode(data []byte) (Record, error) {
	var r Record
	if err := dm.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("corrupted state record: %w", err)
	}
	return r, nil
}
