package mutate

import (
	"testing"

	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/service"
)

func TestObjectCreateFromTemplate(t *testing.T) {
	rooms := docWithRoom(t, "plaza")
	rooms.Doc.World.ObjectTemplates = map[string]*model.ObjectTemplate{
		"torch": {Key: "torch", Name: "Torch", Description: "a lit torch", Tags: []string{"small"}},
	}
	objs := &ObjectService{Doc: rooms.Doc}

	r := objs.CreateFromTemplate("plaza", "torch")
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	room := rooms.Doc.World.Rooms["plaza"]
	found := false
	for _, o := range room.Objects {
		if o.Name == "Torch" {
			found = true
			if o.Description != "a lit torch" {
				t.Fatalf("unexpected description: %q", o.Description)
			}
		}
	}
	if !found {
		t.Fatal("expected a Torch object instantiated into the room")
	}
}

func TestObjectCreateFromTemplateUnknownTemplate(t *testing.T) {
	rooms := docWithRoom(t, "plaza")
	objs := &ObjectService{Doc: rooms.Doc}
	r := objs.CreateFromTemplate("plaza", "missing")
	if errKind(r.Err) != service.KindNotFound {
		t.Fatalf("expected a not-found error, got %+v", r.Err)
	}
}

func TestObjectCreateFromTemplateUnknownRoom(t *testing.T) {
	doc := newTestDoc()
	objs := &ObjectService{Doc: doc}
	r := objs.CreateFromTemplate("nowhere", "torch")
	if errKind(r.Err) != service.KindNotFound {
		t.Fatalf("expected a not-found error, got %+v", r.Err)
	}
}

func TestObjectDeleteTemplateLeavesExistingInstancesIntact(t *testing.T) {
	rooms := docWithRoom(t, "plaza")
	rooms.Doc.World.ObjectTemplates = map[string]*model.ObjectTemplate{
		"torch": {Key: "torch", Name: "Torch"},
	}
	objs := &ObjectService{Doc: rooms.Doc}
	objs.CreateFromTemplate("plaza", "torch")

	r := objs.DeleteTemplate("torch")
	if r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}
	if _, ok := rooms.Doc.World.ObjectTemplates["torch"]; ok {
		t.Fatal("expected template removed")
	}
	found := false
	for _, o := range rooms.Doc.World.Rooms["plaza"].Objects {
		if o.Name == "Torch" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the previously-instantiated Torch to remain in the room")
	}
}

func TestObjectDeleteTemplateUnknown(t *testing.T) {
	doc := newTestDoc()
	objs := &ObjectService{Doc: doc}
	r := objs.DeleteTemplate("missing")
	if errKind(r.Err) != service.KindNotFound {
		t.Fatalf("expected a not-found error, got %+v", r.Err)
	}
}
