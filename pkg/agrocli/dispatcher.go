package agrocli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agroslabs/agros/common"
)

type Dispatcher struct {
	Handlers map[common.UpdateType][]Handler
}

// ErrDisconnect stops the Listen loop when returned by a handler.
var ErrDisconnect error = errors.New("disconnect")

func (d *Dispatcher) process(buf []byte) error {
	var res Response
	err := json.Unmarshal(buf, &res)
	if err != nil {
		return fmt.Errorf("failed to parse (%s): '%s'", err.Error(), string(buf))
	}
	if !res.Ok {
		return errors.New(res.Error)
	}
	if res.Update == nil {
		return nil
	}
	hs, ok := d.Handlers[res.Update.Type]
	if !ok {
		fmt.Println(string(res.Update.Message))
		return nil
	}
	for _, h := range hs {
		if err := h.Handle(res.Update.Message); err != nil {
			return err
		}
	}
	return nil
}
