package tests

import (
	"fmt"

	"github.com/revival/clans/internal/model"
)

func itoa(id model.ClanID) string {
	return fmt.Sprintf("%d", id)
}
