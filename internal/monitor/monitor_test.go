package monitor

import "testing"

func TestStubRegistryDefaultOutput(t *testing.T) {
	r := NewStubRegistry()
	defer r.Close()

	outputs, err := r.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(outputs) != 1 || outputs[0].ID != "STUB-1" {
		t.Errorf("outputs = %+v", outputs)
	}
	if outputs[0].Width != 1920 || outputs[0].Height != 1080 {
		t.Errorf("synthetic output size = %dx%d", outputs[0].Width, outputs[0].Height)
	}
}

func TestStubRegistryEmitsEvents(t *testing.T) {
	r := NewStubRegistry(Output{ID: "DP-1", Width: 800, Height: 600, Scale: 1})
	defer r.Close()

	r.AddOutput(Output{ID: "HDMI-1", Width: 1280, Height: 720, Scale: 1})
	ev := <-r.Events()
	if ev.Kind != OutputAdded || ev.Output.ID != "HDMI-1" {
		t.Errorf("event = %+v", ev)
	}

	r.RemoveOutput("HDMI-1")
	ev = <-r.Events()
	if ev.Kind != OutputRemoved || ev.Output.ID != "HDMI-1" {
		t.Errorf("event = %+v", ev)
	}

	outputs, _ := r.List()
	if len(outputs) != 1 || outputs[0].ID != "DP-1" {
		t.Errorf("outputs after remove = %+v", outputs)
	}
}
