package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pobyzaarif/goshortcute"
)

var ErrInvalidTrackingCode = errors.New("invalid or expired tracking code")

// EncodeTrackingCode seals "order_id|expiry" with AES-CBC under key.
// Key must be 16, 24 or 32 bytes.
func EncodeTrackingCode(orderID uint64, expAt time.Time, key string) (string, error) {
	plain := fmt.Sprintf("%d|%d", orderID, expAt.Unix())

	encrypted, err := goshortcute.AESCBCEncrypt([]byte(plain), []byte(key))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt tracking code: %w", err)
	}

	return goshortcute.StringtoBase64Encode(encrypted), nil
}

// DecodeTrackingCode returns the order id sealed in code if it has not expired.
func DecodeTrackingCode(code, key string, now time.Time) (orderID uint64, err error) {
	defer func() {
		if r := recover(); r != nil {
			orderID, err = 0, ErrInvalidTrackingCode
		}
	}()

	raw := goshortcute.StringtoBase64Decode(code)
	if raw == "" {
		return 0, ErrInvalidTrackingCode
	}

	plain, err := goshortcute.AESCBCDecrypt([]byte(raw), []byte(key))
	if err != nil {
		return 0, ErrInvalidTrackingCode
	}

	parts := strings.Split(plain, "|")
	if len(parts) != 2 {
		return 0, ErrInvalidTrackingCode
	}

	id, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, ErrInvalidTrackingCode
	}

	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, ErrInvalidTrackingCode
	}

	if now.After(time.Unix(ts, 0)) {
		return 0, ErrInvalidTrackingCode
	}

	return id, nil
}
