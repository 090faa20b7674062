package cmd

import "github.com/agroslabs/agros/common"

const (
	DEF_PORT        = common.DefaultPort
	DEF_EVENT_LIMIT = 50
	DEF_NOISE_MAX   = 1.0
)

const DESCRIPTION = `
Agros is a crop campaign scheduling engine. It steps agromanagement
documents day by day through their campaigns, firing the timed and
state-based events each campaign declares, and keeps a journal of
everything that happened in a season.
`

const (
	RunDescription = `The run command submits an agromanagement document to the
daemon and simulates it day by day. Campaign events are
streamed back live together with tick progress.

A run can be delayed with --start-at or --start-in, made
recurring with --every, and driven by a state model using
--model so state-based events have variables to watch.

Example:
        agros plan.yaml
					OR
        agros run plan.yaml

`
	ValidateDescription = `The validate command parses an agromanagement document and
reports its campaigns and simulated day range without
starting a run.

Example:
        agros validate plan.yaml

`
	ListDescription = `The list command displays the runs known to the daemon along
with their unique run ids which can be used to attach to,
stop or inspect them.

Example:
        agros list

`
	EventsDescription = `The events command prints the journaled events of a run in
the order they fired, newest last. Use --limit to cap the
number of returned events.

Example:
        agros events <unique run id>

`
	AttachDescription = `The attach command re-attaches the CLI to an executing run
using its unique run id which you can retrieve by using
"agros list" command.

Example:
        agros attach <unique run id>

`
	StopDescription = `The stop command stops an executing run or cancels a
scheduled one. Recurring runs stop re-arming.

Example:
        agros stop <unique run id>

`
	FlushDescription = `The flush command deletes finished, failed and stopped runs
for the current user, it will also delete their journaled
events.

Example:
        agros flush

`
)
