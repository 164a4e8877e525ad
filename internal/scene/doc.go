// Package scene keeps the authoritative in-process copy of every renderable resource
// and streams each change to subscribed publishers.
package scene
