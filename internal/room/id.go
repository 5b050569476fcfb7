package room

import "github.com/google/uuid"

// Id identifies one room within the registry.
type Id string

func newId() Id { return Id(uuid.NewString()) }

func (i Id) String() string { return string(i) }
