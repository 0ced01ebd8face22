// Package macros implements CRUD and roll execution for saved dice macros.
package macros

import "time"

// Macro is a saved dice roll configuration owned by a single user. The pair
// (owner, name) is unique; different owners may reuse the same name.
type Macro struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"-"`
	Name      string    `json:"name"`
	NumDice   int       `json:"num_dice"`
	Sides     int       `json:"sides"`
	Modifier  int       `json:"modifier"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is the client-facing macro payload. It deliberately carries no owner
// field; the owner is supplied only by the authenticated handler layer, so
// client-supplied owner values cannot reach storage.
type Input struct {
	Name     string
	NumDice  int
	Sides    int
	Modifier int
}

// RollOutcome is the response of executing a saved macro.
type RollOutcome struct {
	MacroID  int64  `json:"macro_id"`
	Name     string `json:"name"`
	Rolls    []int  `json:"rolls"`
	Total    int    `json:"total"`
	Modifier int    `json:"modifier"`
	Final    int    `json:"final"`
}
