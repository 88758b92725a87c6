package object

const (
	memStringHead int64 = 24
	memHashField  int64 = 8
)

func CostString(n int) int64 {
	if n < 0 {
		return memStringHead + memHashField
	}
	return memStringHead + memHashField + int64(n)
}
