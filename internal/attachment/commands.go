package attachment

import (
	"context"

	"github.com/oceanBigOne/mre-who-am-i/internal/domain"
)

type managerCmd interface{ managerCmd() }

type assignCmd struct {
	ctx     context.Context
	userID  domain.UserID
	label   string
	replyCh chan error
}

func (assignCmd) managerCmd() {}

type removeCmd struct {
	userID  domain.UserID
	replyCh chan error
}

func (removeCmd) managerCmd() {}

// reconcileCmd with a nil replyCh is fire-and-forget.
type reconcileCmd struct {
	replyCh chan ReconcileResult
}

func (reconcileCmd) managerCmd() {}

type listCmd struct {
	replyCh chan []Attachment
}

func (listCmd) managerCmd() {}

type stopCmd struct{}

func (stopCmd) managerCmd() {}
