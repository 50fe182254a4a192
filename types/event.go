package types

// EventAttribute is a key-value pair of an event, such as
// ("recipient", "inj1...").
type EventAttribute struct {
	Key   string `cramberry:"1"`
	Value string `cramberry:"2"`
	Index bool   `cramberry:"3"`
}

// Event is emitted by message handlers and by begin and end block. Kind
// is the cosmos event type ("transfer", "message", "bid" ...).
type Event struct {
	Kind       string           `cramberry:"1"`
	Attributes []EventAttribute `cramberry:"2"`
}

// Attr returns the value of the first attribute named key.
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
