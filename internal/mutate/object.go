package mutate

import (
	"fmt"

	"github.com/talgya/mini-world/internal/model"
	"github.com/talgya/mini-world/internal/persist"
	"github.com/talgya/mini-world/internal/service"
)

// ObjectService implements the Section 4.F object-template operations.
type ObjectService struct {
	Doc *persist.Document
}

// NewObjectService constructs an ObjectService over doc.
func NewObjectService(doc *persist.Document) *ObjectService { return &ObjectService{Doc: doc} }

// CreateFromTemplate deep-copies the named template into room, assigning a
// fresh UUID.
func (s *ObjectService) CreateFromTemplate(roomID, templateKey string) service.Result {
	room, ok := s.Doc.World.Rooms[roomID]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such room %q", roomID)))
	}
	tmpl, ok := s.Doc.World.ObjectTemplates[templateKey]
	if !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such template %q", templateKey)))
	}
	obj := tmpl.Instantiate(model.UUID(newUUID()))
	room.Objects[obj.UUID] = obj
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("%s appears.", obj.Name)}}, []service.Broadcast{
		{RoomID: roomID, Text: fmt.Sprintf("%s appears.", obj.Name)},
	})
}

// DeleteTemplate removes a template definition. Existing instantiated
// Objects are unaffected — they carry their own copied fields.
func (s *ObjectService) DeleteTemplate(templateKey string) service.Result {
	if _, ok := s.Doc.World.ObjectTemplates[templateKey]; !ok {
		return service.Fail(service.New(service.KindNotFound, fmt.Sprintf("no such template %q", templateKey)))
	}
	delete(s.Doc.World.ObjectTemplates, templateKey)
	return service.Ok([]service.Emit{{Text: fmt.Sprintf("Template %q deleted.", templateKey)}}, nil)
}
