// Package dict provides the ordered key/value record that carries request
// fields into, and result fields out of, every payment processing operation.
package dict

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidKey indicates an empty key was provided
	ErrInvalidKey = errors.New("dict: key cannot be empty")
)

// Dict is an insertion ordered set of unique, case sensitive keys. Each value
// is either present or absent. Deleting a key leaves the entry in place with
// an absent value, so a later Put restores it at its original position.
//
// A Dict is owned by a single request and is not safe for concurrent use.
type Dict struct {
	entries *linkedhashmap.Map
}

// New returns an empty Dict. The zero value is also ready to use.
func New() *Dict {
	return &Dict{
		entries: linkedhashmap.New(),
	}
}

func (d *Dict) lazyInit() {
	if d.entries == nil {
		d.entries = linkedhashmap.New()
	}
}

// Put inserts or updates the value for key. Updating an existing key does not
// change its position.
func (d *Dict) Put(key, value string) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}

	d.lazyInit()
	d.entries.Put(key, &value)
	return nil
}

// Putf formats a value according to format and puts it under key.
func (d *Dict) Putf(key, format string, args ...interface{}) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}
	return d.Put(key, fmt.Sprintf(format, args...))
}

// Delete clears the value for key. It is a no-op when the key was never set.
func (d *Dict) Delete(key string) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}

	d.lazyInit()
	if _, ok := d.entries.Get(key); ok {
		d.entries.Put(key, (*string)(nil))
	}
	return nil
}

// Get returns the value for key and whether it is present.
func (d *Dict) Get(key string) (string, bool) {
	p := d.lookup(key)
	if p == nil {
		return "", false
	}
	return *p, true
}

// GetString returns the value for key, or an empty string when absent.
func (d *Dict) GetString(key string) string {
	value, _ := d.Get(key)
	return value
}

// GetInt parses the leading integer of the value for key. Zero is returned
// when the value is absent or does not start with an integer.
func (d *Dict) GetInt(key string) int {
	value, ok := d.Get(key)
	if !ok {
		return 0
	}
	return parseLeadingInt(value)
}

// AppendLine appends text to the current value of key, separated by a newline.
// If the value is absent, AppendLine behaves like Put.
func (d *Dict) AppendLine(key, text string) error {
	current, ok := d.Get(key)
	if !ok {
		return d.Put(key, text)
	}
	return d.Put(key, current+"\n"+text)
}

// StripNewlines removes every newline from the value of key in place.
func (d *Dict) StripNewlines(key string) {
	p := d.lookup(key)
	if p == nil || strings.IndexByte(*p, '\n') < 0 {
		return
	}
	*p = strings.ReplaceAll(*p, "\n", "")
}

// Snatch returns the value for key and clears it, transferring ownership of
// the value to the caller.
func (d *Dict) Snatch(key string) (string, bool) {
	p := d.lookup(key)
	if p == nil {
		return "", false
	}

	d.entries.Put(key, (*string)(nil))
	return *p, true
}

// Keys returns, in insertion order, the keys that currently have a value.
func (d *Dict) Keys() []string {
	if d.entries == nil {
		return nil
	}

	keys := make([]string, 0, d.entries.Size())
	it := d.entries.Iterator()
	for it.Next() {
		if it.Value().(*string) != nil {
			keys = append(keys, it.Key().(string))
		}
	}
	return keys
}

// Len returns the number of keys that currently have a value.
func (d *Dict) Len() int {
	return len(d.Keys())
}

func (d *Dict) lookup(key string) *string {
	if d.entries == nil {
		return nil
	}

	v, ok := d.entries.Get(key)
	if !ok {
		return nil
	}
	return v.(*string)
}

// parseLeadingInt mirrors atoi: optional leading whitespace and sign followed
// by decimal digits, stopping at the first non-digit.
func parseLeadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
