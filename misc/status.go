package misc

// Status is the envelope returned by every mutating endpoint. Callers
// re-sync by re-fetching the record with the returned id.
type Status struct {
	Code  int    `json:"code"`
	ID    string `json:"id,omitempty"`
	Msg   string `json:"msg,omitempty"`
	Error string `json:"error,omitempty"`
}

func StatusOK(id string) Status {
	return Status{Code: 200, ID: id, Msg: "ok"}
}

func StatusMsg(id, msg string) Status {
	return Status{Code: 200, ID: id, Msg: msg}
}

func StatusErr(msg string) Status {
	return Status{Code: 400, Error: msg}
}
