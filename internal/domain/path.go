package domain

import "strings"

// ResolvePath walks a dotted field path ("address.city") from root,
// returning UnknownFieldError if any segment does not resolve.
func ResolvePath(root Value, path string) (Value, error) {
	if path == "" {
		return root, nil
	}
	cur := root
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		fv, ok := cur.Field(seg)
		if !ok {
			return Value{}, UnknownFieldError(path)
		}
		cur = fv
	}
	return cur, nil
}
