package common

// Split names a dataset partition. The values double as output folder
// names so they stay capitalized.
type Split string

const (
	SplitTrain Split = "Train"
	SplitVal   Split = "Val"
	SplitTest  Split = "Test"
)

// Splits returns all partitions in canonical order.
func Splits() []Split {
	return []Split{SplitTrain, SplitVal, SplitTest}
}
