package preorder

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/code-payments/payproc-server/pkg/dict"
)

const (
	metaKeyPrefix = "Meta["
	metaKeySuffix = "]"
)

// metaName returns the name within a Meta[name] key
func metaName(key string) (string, bool) {
	if !strings.HasPrefix(key, metaKeyPrefix) || !strings.HasSuffix(key, metaKeySuffix) {
		return "", false
	}

	name := key[len(metaKeyPrefix) : len(key)-len(metaKeySuffix)]
	if len(name) == 0 {
		return "", false
	}
	return name, true
}

func metaKey(name string) string {
	return metaKeyPrefix + name + metaKeySuffix
}

// encodeMeta serializes every Meta[name] entry of d as name=value pairs joined
// by '&', in insertion order. It returns nil when there are none.
func encodeMeta(d *dict.Dict) *string {
	var sb strings.Builder
	for _, key := range d.Keys() {
		name, ok := metaName(key)
		if !ok {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(d.GetString(key)))
	}

	if sb.Len() == 0 {
		return nil
	}

	encoded := sb.String()
	return &encoded
}

// decodeMeta writes the entries of a blob produced by encodeMeta into d as
// Meta[name] keys
func decodeMeta(blob string, d *dict.Dict) error {
	for _, pair := range strings.Split(blob, "&") {
		rawName, rawValue, ok := strings.Cut(pair, "=")
		if !ok {
			return errors.Errorf("malformed meta entry %q", pair)
		}

		name, err := url.QueryUnescape(rawName)
		if err != nil {
			return errors.Wrap(err, "malformed meta name")
		}

		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return errors.Wrap(err, "malformed meta value")
		}

		if err := d.Put(metaKey(name), value); err != nil {
			return err
		}
	}
	return nil
}
