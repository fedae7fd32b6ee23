// Package feeder generates randomized test plans and drains them onto an
// output under a fixed ordering policy.
//
// A Feeder owns four FIFOs, one per entity kind. Plans built with
// FeedTestPlan and entities fed directly with FeedBuffer, FeedLabel,
// FeedMessage and FeedPacket land in those queues. Work is called
// repeatedly by a single scheduler goroutine and emits queued entities:
//
//	checking-labels -> emitting-one -> idle-backoff
//
// Labels go first, as long as their absolute index falls before the end of
// the next queued buffer. Then at most one buffer, message or packet is
// emitted, in that priority. With nothing to emit, Work waits up to
// WorkInfo.MaxTimeout for new input and yields.
//
// Feed and plan calls may run concurrently with Work. Work itself must not
// be called concurrently with itself.
package feeder
