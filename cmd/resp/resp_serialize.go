// Provide serialization functions for compliance with the REdis Serialization Protocol
// specification, see: https://redis.io/docs/reference/protocol-spec/#resp-protocol-description
package resp

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"
)

type SimpleString string

const OK = SimpleString("OK")

var timeType = reflect.TypeOf(time.Time{})

func Serialize(v any) (string, error) {
	if v == nil {
		return SerializeNil(), nil
	}
	if err, ok := v.(error); ok {
		return SerializeError(err), nil
	}

	return serializeValue(reflect.ValueOf(v))
}

func serializeValue(val reflect.Value) (string, error) {
	tp := val.Type()
	if tp == timeType {
		return SerializeStr(val.Interface().(time.Time).Format(time.RFC3339)), nil
	}

	switch tp.Kind() {
	case reflect.Pointer, reflect.Interface:
		if val.IsNil() {
			return SerializeNil(), nil
		}
		return Serialize(val.Elem().Interface())
	case reflect.Bool:
		return SerializeBool(val.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return SerializeInt(int(val.Int())), nil
	case reflect.String:
		if tp == reflect.TypeOf(SimpleString("")) {
			return SerializeSimpleStr(val.String()), nil
		}
		return SerializeStr(val.String()), nil
	case reflect.Struct:
		return serializeStruct(val)
	case reflect.Map:
		keys := val.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})

		out := "%" + strconv.Itoa(val.Len()) + "\r\n"
		for _, k := range keys {
			r, err := serializeValue(k)
			if err != nil {
				return "", err
			}
			out += r

			r, err = serializeValue(val.MapIndex(k))
			if err != nil {
				return "", err
			}
			out += r
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		out := "*" + strconv.Itoa(val.Len()) + "\r\n"
		for i := 0; i < val.Len(); i++ {
			r, err := serializeValue(val.Index(i))
			if err != nil {
				return "", err
			}

			out += r
		}
		return out, nil
	}

	return "", fmt.Errorf("value '%s' cannot be serialized", tp)
}

// serializeStruct writes exported fields as a map, naming them after their
// `resp` tag when present.
func serializeStruct(val reflect.Value) (string, error) {
	tp := val.Type()

	var fields string
	n := 0
	for i := 0; i < tp.NumField(); i++ {
		field := tp.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name
		if tag := field.Tag.Get("resp"); tag == "-" {
			continue
		} else if tag != "" {
			name = tag
		}

		r, err := serializeValue(val.Field(i))
		if err != nil {
			return "", err
		}
		fields += SerializeStr(name) + r
		n++
	}

	return "%" + strconv.Itoa(n) + "\r\n" + fields, nil
}

func SerializeNil() string {
	return "$-1\r\n"
}

func SerializeBool(b bool) string {
	out := "#"
	if b {
		out += "t"
	} else {
		out += "f"
	}
	out += "\r\n"
	return out
}

func SerializeSimpleStr(str string) string {
	return "+" + str + "\r\n"
}

func SerializeStr(str string) string {
	out := "$"
	out += strconv.Itoa(len(str)) + "\r\n"
	out += str + "\r\n"
	return out
}

func SerializeError(err error) string {
	return "-" + err.Error() + "\r\n"
}

func SerializeInt(n int) string {
	return ":" + strconv.Itoa(n) + "\r\n"
}
