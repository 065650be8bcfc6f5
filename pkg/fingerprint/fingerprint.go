package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var ErrInvalidBody = errors.New("fingerprint: body is not valid json")

// Canonicalize 重新编码 JSON: 对象 key 排序, 数字原样保留, 空 body 视为 null.
// 字段顺序或空白不同但语义相同的请求得到同一结果.
func Canonicalize(body []byte) ([]byte, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return []byte("null"), nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidBody)
	}

	// encoding/json 对 map 的 key 按字典序输出
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return out, nil
}

// Compute 对 (method, path, body, token) 计算请求指纹, 返回 64 位十六进制
func Compute(method, path string, body []byte, token string) (string, error) {
	canonical, err := Canonicalize(body)
	if err != nil {
		return "", err
	}
	bodySum := sha256.Sum256(canonical)

	h := sha256.New()
	for _, part := range [][]byte{[]byte(method), []byte(path), bodySum[:], []byte(token)} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		h.Write(part)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
