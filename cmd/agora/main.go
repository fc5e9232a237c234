// agora is the decision-debate CLI: assess readiness, run multi-expert
// debates, and inspect consensus, rankings, and argument graphs.
//
// Usage:
//
//	agora analyze "Should we expand into Europe? Budget is $2M..."
//	agora create "question" --background "..." --constraint "..."
//	agora configure <debate-id> --experts 3 --rounds 5
//	agora start <debate-id>
//	agora status <debate-id>
//	agora serve
package main
