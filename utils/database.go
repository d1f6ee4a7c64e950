package utils

import (
	"fmt"
	"reflect"
)

// ColumnList returns the `db` tags of the fields of T, in declaration order, optionally prefixed with a table name.
func ColumnList[T any](prefix ...string) []string {
	var zero T
	t := reflect.TypeOf(zero)
	columns := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		if len(prefix) > 0 {
			tag = fmt.Sprintf("%s.%s", prefix[0], tag)
		}
		columns = append(columns, tag)
	}
	return columns
}
