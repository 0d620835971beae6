// Package docker manages scoring service containers on a local container
// engine. It creates, inspects, and removes the labeled containers that back
// the container-instance deployment target.
package docker
