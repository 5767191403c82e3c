package ui

import (
	"time"

	"grocli/internal/api"
	"grocli/internal/session"
	"grocli/internal/types"
)

// VisibilityChangedMsg is pushed from the cart visibility signal (its timer
// fires off the bubbletea loop) to force a re-render.
type VisibilityChangedMsg struct {
	Shown bool
}

// SessionRefreshedMsg is pushed by the credentials watcher when another
// grocli process logged in or out.
type SessionRefreshedMsg struct {
	Snapshot session.Snapshot
}

// FrameTickMsg drives the fly-to-cart animation at ~60fps while a transfer
// is in flight.
type FrameTickMsg time.Time

type storefrontLoadedMsg struct {
	storefront *api.Storefront
}

type productsLoadedMsg struct {
	category string
	products []types.Product
}

type loadErrMsg struct {
	err error
}

type loginResultMsg struct {
	ok  bool
	err error
}

type couponResultMsg struct {
	code string
	err  error
}

type orderPlacedMsg struct {
	order *types.Order
	gen   uint64
}

type orderFailedMsg struct {
	err error
}

type ordersLoadedMsg struct {
	orders []types.Order
}

type partnerOrdersLoadedMsg struct {
	orders []types.Order
}

type statusUpdatedMsg struct {
	order *types.Order
}
