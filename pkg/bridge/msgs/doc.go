// Package msgs defines the messages exchanged with a display over the network.
//
// Each message travels in a Typed envelope carrying a type ID and the
// protobuf encoded message. The type ID tells the kind (command or event),
// the group, and whether a command message is a reply.
package msgs
