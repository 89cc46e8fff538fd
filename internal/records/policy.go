package records

// Direction is the inferred flow of a message relative to the device.
type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

// DirectionPolicy infers message direction from its parties.
type DirectionPolicy interface {
	Direction(sender, recipient string) Direction
}

// SenderOnlyInbound treats a message with a sender and no recipient as
// inbound and everything else as outbound. It does not know the device
// owner's identity.
type SenderOnlyInbound struct{}

func (SenderOnlyInbound) Direction(sender, recipient string) Direction {
	if sender != "" && recipient == "" {
		return Inbound
	}
	return Outbound
}

// DirectionFunc adapts a function to DirectionPolicy.
type DirectionFunc func(sender, recipient string) Direction

func (f DirectionFunc) Direction(sender, recipient string) Direction {
	return f(sender, recipient)
}
