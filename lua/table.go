// lua/table.go
// Copyright(c) 2025 viperops2miz contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package lua

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// Key is a table key: either a positive integer or a string. Keys are
// comparable and may be used as map keys.
type Key struct {
	str   string
	num   int
	isStr bool
}

func IntKey(n int) Key {
	return Key{num: n}
}

func StringKey(s string) Key {
	return Key{str: s, isStr: true}
}

// AsInt returns the integer held by k; ok is false for string keys.
func (k Key) AsInt() (n int, ok bool) {
	return k.num, !k.isStr
}

// AsString returns the string held by k; ok is false for integer keys.
func (k Key) AsString() (s string, ok bool) {
	return k.str, k.isStr
}

// String returns k the way it is written inside a table constructor,
// e.g. [3] or ["name"].
func (k Key) String() string {
	if k.isStr {
		return "[" + quote(k.str) + "]"
	}
	return "[" + strconv.Itoa(k.num) + "]"
}

type Entry struct {
	Key   Key
	Value Value
}

// Table is an ordered associative container. Entries are kept in the
// order they were parsed or first inserted; overwriting an existing key
// keeps its position. The zero value is an empty table ready for use.
type Table struct {
	entries []Entry
	index   map[Key]int // key -> position in entries
}

func NewTable() *Table {
	return &Table{}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func (t *Table) Get(k Key) (Value, bool) {
	if t == nil {
		return nil, false
	}
	if i, ok := t.index[k]; ok {
		return t.entries[i].Value, true
	}
	return nil, false
}

func (t *Table) Has(k Key) bool {
	_, ok := t.Get(k)
	return ok
}

// Lookup is like Get but returns an error wrapping ErrKeyNotFound when k
// is not present.
func (t *Table) Lookup(k Key) (Value, error) {
	if v, ok := t.Get(k); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, k)
}

// Set stores v under k, overwriting in place if k is already present
// and appending a new entry otherwise.
func (t *Table) Set(k Key, v Value) {
	if i, ok := t.index[k]; ok {
		t.entries[i].Value = v
		return
	}
	if t.index == nil {
		t.index = make(map[Key]int)
	}
	t.index[k] = len(t.entries)
	t.entries = append(t.entries, Entry{Key: k, Value: v})
}

// insert adds a new entry; it fails if k is already present.
func (t *Table) insert(k Key, v Value) bool {
	if t.Has(k) {
		return false
	}
	t.Set(k, v)
	return true
}

// Delete removes k, preserving the relative order of the remaining
// entries. It returns false if k was not present.
func (t *Table) Delete(k Key) bool {
	i, ok := t.index[k]
	if !ok {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	delete(t.index, k)
	for j := i; j < len(t.entries); j++ {
		t.index[t.entries[j].Key] = j
	}
	return true
}

// All iterates over the entries in order.
func (t *Table) All() iter.Seq2[Key, Value] {
	return func(yield func(Key, Value) bool) {
		if t == nil {
			return
		}
		for _, e := range t.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

func (t *Table) Keys() []Key {
	keys := make([]Key, 0, t.Len())
	for k := range t.All() {
		keys = append(keys, k)
	}
	return keys
}

// MaxIntKey returns the largest integer key in the table, or 0 if there
// are no integer keys. Integer keysets may be sparse, so this is not
// necessarily Len().
func (t *Table) MaxIntKey() int {
	m := 0
	for k := range t.All() {
		if n, ok := k.AsInt(); ok && n > m {
			m = n
		}
	}
	return m
}

// Append stores v one past the largest integer key and returns the key
// used.
func (t *Table) Append(v Value) int {
	n := t.MaxIntKey() + 1
	t.Set(IntKey(n), v)
	return n
}

// Clone returns a deep copy of t: every nested table is copied as well,
// so edits to the clone never show up in t.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := &Table{
		entries: make([]Entry, len(t.entries)),
		index:   make(map[Key]int, len(t.entries)),
	}
	for i, e := range t.entries {
		c.entries[i] = Entry{Key: e.Key, Value: CloneValue(e.Value)}
		c.index[e.Key] = i
	}
	return c
}

///////////////////////////////////////////////////////////////////////////
// Typed field access

// Field returns the value stored under the string key name.
func (t *Table) Field(name string) (Value, error) {
	return t.Lookup(StringKey(name))
}

func (t *Table) SetField(name string, v Value) {
	t.Set(StringKey(name), v)
}

func (t *Table) TableField(name string) (*Table, error) {
	return fieldAs(t, StringKey(name), AsTable)
}

func (t *Table) StringField(name string) (string, error) {
	return fieldAs(t, StringKey(name), AsString)
}

func (t *Table) NumberField(name string) (float64, error) {
	return fieldAs(t, StringKey(name), AsNumber)
}

func (t *Table) BoolField(name string) (bool, error) {
	return fieldAs(t, StringKey(name), AsBool)
}

// IntField applies the lenient AsInt conversion to the named field.
func (t *Table) IntField(name string) (int, error) {
	return fieldAs(t, StringKey(name), AsInt)
}

// TableIndex returns the table stored under the integer key i.
func (t *Table) TableIndex(i int) (*Table, error) {
	return fieldAs(t, IntKey(i), AsTable)
}

func fieldAs[T any](t *Table, k Key, as func(Value) (T, error)) (T, error) {
	v, err := t.Lookup(k)
	if err != nil {
		var zero T
		return zero, err
	}
	r, err := as(v)
	if err != nil {
		return r, fmt.Errorf("%s: %w", k, err)
	}
	return r, nil
}

// TableAt follows a slash-separated path of keys from t, e.g.
// "coalition/red/country/2". Path elements that parse as integers
// address integer keys; all others are string keys.
func (t *Table) TableAt(path string) (*Table, error) {
	cur := t
	for _, elem := range strings.Split(strings.Trim(path, "/"), "/") {
		if elem == "" {
			continue
		}
		k := StringKey(elem)
		if n, err := strconv.Atoi(elem); err == nil {
			k = IntKey(n)
		}
		next, err := fieldAs(cur, k, AsTable)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cur = next
	}
	return cur, nil
}
