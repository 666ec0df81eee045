package tracker

// jiraIssue represents a Jira issue response.
type jiraIssue struct {
	Key    string     `json:"key"`
	Fields jiraFields `json:"fields"`
}

// jiraFields represents the fields in a Jira issue.
type jiraFields struct {
	Summary      string    `json:"summary"`
	Status       jiraNamed `json:"status"`
	IssueType    jiraNamed `json:"issuetype"`
	Assignee     *jiraUser `json:"assignee"`
	TimeEstimate *int64    `json:"timeestimate"`
}

// jiraNamed is the common {"name": ...} shape Jira uses for statuses and types.
type jiraNamed struct {
	Name string `json:"name"`
}

// jiraUser represents a Jira user.
type jiraUser struct {
	DisplayName string `json:"displayName"`
}

// jiraTransitionList is the GET transitions response envelope.
type jiraTransitionList struct {
	Transitions []jiraTransition `json:"transitions"`
}

// jiraTransition represents a single offered transition.
type jiraTransition struct {
	ID string    `json:"id"`
	To jiraNamed `json:"to"`
}

// jiraTransitionRequest is the POST transitions payload.
type jiraTransitionRequest struct {
	Transition jiraTransitionID `json:"transition"`
	Fields     *jiraFieldsPatch `json:"fields,omitempty"`
	Update     *jiraUpdatePatch `json:"update,omitempty"`
}

type jiraTransitionID struct {
	ID string `json:"id"`
}

type jiraFieldsPatch struct {
	Resolution *jiraNamed `json:"resolution,omitempty"`
}

type jiraUpdatePatch struct {
	Comment []jiraCommentOp `json:"comment,omitempty"`
}

type jiraCommentOp struct {
	Add jiraCommentBody `json:"add"`
}

type jiraCommentBody struct {
	Body string `json:"body"`
}
