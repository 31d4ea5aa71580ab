package utils

import "fmt"

// PathFor joins a route prefix and a resource id
func PathFor(base string, id uint64, suffix ...string) string {
	p := fmt.Sprintf("%s/%d", base, id)
	for _, s := range suffix {
		p += s
	}
	return p
}
