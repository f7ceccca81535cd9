package transport

// PendingBytes exposes the kernel queue probe to tests.
var PendingBytes = pendingBytes
