package stile

// Version is the stile release version.
const Version = "0.1.0"
