package protocol

// Stderr text of the stop acknowledgment.
const StoppedMessage = "daemon stopped"

// Execution or stop request sent by a client.
type Request struct {
	Lang   string   `json:"lang"`           // Language tag.
	Script string   `json:"script"`         // Script path as seen by the daemon.
	Args   []string `json:"args,omitempty"` // Script arguments.
	Stop   bool     `json:"stop,omitempty"` // Shut the daemon down instead of running a job.
}

// Result of one request.
type Response struct {
	Exit   int    `json:"exit"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// Returns the request that asks the daemon to stop.
func StopRequest() Request {
	return Request{Stop: true}
}

// Returns the acknowledgment written in reply to a stop request.
func Stopped() Response {
	return Response{Exit: 0, Stdout: "", Stderr: StoppedMessage}
}

// Whether the response is the stop acknowledgment.
func (r Response) IsStopped() bool {
	return r == Stopped()
}
