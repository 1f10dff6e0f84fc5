// Package hub is a multi-backend file-synchronization hub.
//
// A hub deployment connects independent storage services
// (local disk, object stores, remote file servers)
// so that the files in their shared folders stay alike.
//
// Each service is driven by an adapter,
// or _driver_,
// that knows how to read and write one backend.
// The hub itself never stores file content.
// It decides who needs a copy of a changed file,
// and moves the bytes between drivers in chunks,
// keeping enough state in a shared metadata store
// that any component may crash and pick up where it left off.
//
// When a driver sees a local change,
// its service records the change for the _Referee_.
// The Referee applies the rules of the file's folder
// (size bounds, mimetypes, black- and whitelists, read/write modes)
// and queues an event for every service that must act.
// Each service's _Dealer_ turns those events into workers,
// one per file at a time,
// which pull content from the source service's _Router_
// and hand it to their own driver.
//
// This package assembles a whole deployment in one process.
// The subpackages can also be run separately;
// see cmd/hub.
package hub
