package ranking

import (
	"fmt"

	"github.com/shrimpsizemoose/teachteam/internal/terrors"
)

type Move string

const (
	MoveTop      Move = "top"
	MoveBottom   Move = "bottom"
	MoveUp       Move = "up"
	MoveDown     Move = "down"
	MovePosition Move = "position"
)

func ParseMove(s string) (Move, error) {
	switch m := Move(s); m {
	case MoveTop, MoveBottom, MoveUp, MoveDown, MovePosition:
		return m, nil
	}
	return "", fmt.Errorf("unknown move %q", s)
}

func IndexOf(list []string, tutor string) int {
	for i, t := range list {
		if t == tutor {
			return i
		}
	}
	return -1
}

// Target resolves a move into an absolute position in list. The position
// argument is only used by MovePosition. Bumping past either end resolves to
// the current index, which makes the move a no-op.
func Target(list []string, tutor string, move Move, position int) (int, error) {
	if len(list) == 0 {
		return 0, terrors.ErrEmptyRanking
	}
	current := IndexOf(list, tutor)
	if current < 0 && move != MovePosition {
		return 0, fmt.Errorf("%s: %w", tutor, terrors.ErrTutorNotRanked)
	}

	switch move {
	case MoveTop:
		return 0, nil
	case MoveBottom:
		return len(list) - 1, nil
	case MoveUp:
		if current == 0 {
			return current, nil
		}
		return current - 1, nil
	case MoveDown:
		if current == len(list)-1 {
			return current, nil
		}
		return current + 1, nil
	case MovePosition:
		return position, nil
	}
	return 0, fmt.Errorf("unknown move %q", move)
}

// MoveToPosition removes tutor from its slot and reinserts it at target,
// shifting everything in between by one. The input slice is not modified.
func MoveToPosition(list []string, tutor string, target int) ([]string, error) {
	if len(list) == 0 {
		return nil, terrors.ErrEmptyRanking
	}
	if target < 0 || target > len(list)-1 {
		return nil, fmt.Errorf("%d not in [0, %d]: %w", target, len(list)-1, terrors.ErrPositionOutOfBounds)
	}
	current := IndexOf(list, tutor)
	if current < 0 {
		return nil, fmt.Errorf("%s: %w", tutor, terrors.ErrTutorNotRanked)
	}

	out := make([]string, 0, len(list))
	out = append(out, list[:current]...)
	out = append(out, list[current+1:]...)

	out = append(out[:target], append([]string{tutor}, out[target:]...)...)
	return out, nil
}

// Prune drops tutor from list, keeping the remaining order.
func Prune(list []string, tutor string) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		if t != tutor {
			out = append(out, t)
		}
	}
	return out
}

// Dense reports whether ranks form an exact permutation of 0..len-1.
func Dense(ranks []int) bool {
	seen := make([]bool, len(ranks))
	for _, r := range ranks {
		if r < 0 || r >= len(ranks) || seen[r] {
			return false
		}
		seen[r] = true
	}
	return true
}
