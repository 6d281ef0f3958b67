package catalog

// kindByTypeCode maps catalog type codes to Shikimori "kind" values.
var kindByTypeCode = map[string]string{
	"tv":      "tv",
	"movie":   "movie",
	"ova":     "ova",
	"ona":     "ona",
	"special": "special",
}

// ExternalKind returns the Shikimori kind for the item's type code. The
// second result is false when the item has no type or the code is unmapped.
func (i Item) ExternalKind() (string, bool) {
	code := i.TypeCode()
	if code == "" {
		return "", false
	}
	kind, ok := kindByTypeCode[code]
	return kind, ok
}
