package dap

const startHandle = 1000

// handlesMap maps arbitrary values to unique sequential ids, so a
// VariablesReference or SourceReference in a DAP response can later be
// resolved back to the value it stood for. Based on
// https://github.com/microsoft/vscode-debugadapter-node/blob/master/adapter/src/handles.ts
type handlesMap struct {
	nextHandle    int
	handleToVal   map[int]interface{}
	aliasToHandle map[string]int
}

func newHandlesMap() *handlesMap {
	return &handlesMap{
		nextHandle:    startHandle,
		handleToVal:   make(map[int]interface{}),
		aliasToHandle: make(map[string]int),
	}
}

func (hs *handlesMap) create(alias string, value interface{}) int {
	next := hs.nextHandle
	hs.nextHandle++
	hs.handleToVal[next] = value
	hs.aliasToHandle[alias] = next
	return next
}

func (hs *handlesMap) get(handle int) (interface{}, bool) {
	v, ok := hs.handleToVal[handle]
	return v, ok
}

func (hs *handlesMap) lookupHandle(alias string) (int, bool) {
	handle, ok := hs.aliasToHandle[alias]
	return handle, ok
}

func (hs *handlesMap) reset() {
	hs.nextHandle = startHandle
	hs.handleToVal = make(map[int]interface{})
	hs.aliasToHandle = make(map[string]int)
}
