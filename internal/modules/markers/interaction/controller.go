// Package interaction implements the mode state machine that decides how map
// and marker clicks are interpreted.
package interaction

import (
	"errors"
	"fmt"

	"stationmap/internal/modules/markers/store"
	"stationmap/internal/modules/markers/types"
)

var ErrUnknownCommand = errors.New("unknown command")

// Controller is not safe for concurrent use; callers serialize events.
type Controller struct {
	mode     types.Mode
	selected int
	hasSel   bool
}

func New() *Controller {
	return &Controller{mode: types.ModeIdle}
}

func (c *Controller) Mode() types.Mode { return c.mode }

// Selection returns the selected marker index, if any.
func (c *Controller) Selection() (int, bool) {
	return c.selected, c.hasSel
}

// Apply enters the mode named by cmd. Entering adding drops any selection;
// switching between editing and deleting keeps it.
func (c *Controller) Apply(cmd types.Command) error {
	switch cmd {
	case types.CommandAdd:
		c.mode = types.ModeAdding
		c.clearSelection()
	case types.CommandEdit:
		c.mode = types.ModeEditing
	case types.CommandDelete:
		c.mode = types.ModeDeleting
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	return nil
}

// MapClick places a new marker at p while adding and returns to idle. In any
// other mode the click is ignored and s is returned as is.
func (c *Controller) MapClick(s store.Store, p types.Position) (store.Store, bool) {
	if c.mode != types.ModeAdding {
		return s, false
	}
	c.mode = types.ModeIdle
	return s.Append(types.NewMarker(p)), true
}

// MarkerClick selects the marker at index while editing or deleting. The
// previous selection, if any, is replaced.
func (c *Controller) MarkerClick(s store.Store, index int) bool {
	if c.mode != types.ModeEditing && c.mode != types.ModeDeleting {
		return false
	}
	if _, ok := s.At(index); !ok {
		return false
	}
	c.selected = index
	c.hasSel = true
	return true
}

// FinishEdit clears the selection and leaves editing mode. Deleting mode is
// kept.
func (c *Controller) FinishEdit() {
	c.clearSelection()
	if c.mode == types.ModeEditing {
		c.mode = types.ModeIdle
	}
}

// FinishDelete clears the selection and leaves both editing and deleting.
func (c *Controller) FinishDelete() {
	c.clearSelection()
	if c.mode == types.ModeEditing || c.mode == types.ModeDeleting {
		c.mode = types.ModeIdle
	}
}

// ShiftSelection moves the selected index by n, used when markers are
// inserted in front of the list.
func (c *Controller) ShiftSelection(n int) {
	if c.hasSel {
		c.selected += n
	}
}

func (c *Controller) clearSelection() {
	c.selected = 0
	c.hasSel = false
}
