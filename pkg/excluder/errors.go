package excluder

import (
	"errors"
	"fmt"
)

// ErrNotInitialized 表示还没有 workspace root 就调用了操作
var ErrNotInitialized = errors.New("cleanview: workspace root not initialized")

// StoreError 表示读写外部设置或持久化状态失败
// 出现该错误时，控制器的内存状态保持不变。
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
