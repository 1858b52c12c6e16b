package op

// Kind tags an operation variety. Kinds compare with ==; a recognizer is
// bound to exactly one kind and the consolidator enforces one recognizer
// per kind globally.
type Kind string

const (
	// KindRead is the atomic read operation.
	KindRead Kind = "read"
	// KindWrite is the atomic write operation.
	KindWrite Kind = "write"
	// KindSwap is a pairwise exchange of two slot values.
	KindSwap Kind = "swap"
)
