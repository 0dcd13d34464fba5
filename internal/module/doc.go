// Package module implements on-demand feature modules: a Registry holding each
// module's install state, an Installer that performs asynchronous, coalesced
// installs through a pluggable Backend, and a typed Provider facade that hands
// out a module's contents once it is installed and its native entry points are
// loaded.
//
// A module moves through
//
//	NotInstalled -> Installing -> Installed -> native loaded -> contents cached
//	                Installing -> Failed -> Installing (retry)
//
// Nothing here is global. An application creates one Registry and one
// Installer and shares them between its providers.
package module
