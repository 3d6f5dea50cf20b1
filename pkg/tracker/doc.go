/*
Package tracker implements the execution-context store of a reporting launch.

The store keeps an owned stack of story frames (the root frame at the bottom,
nested given-stories above it), the current launch identifier, the one-way
"service down" latch and the collection of items that were started but whose
finish has not been confirmed.

None of the operations fail: absence is an unset ItemID or a nil pointer.
The store is driven by a single test-engine thread. The only value meant to be
read concurrently is the currently executing item (see CurrentItem), which log
appenders typically poll from other goroutines.
*/
package tracker
