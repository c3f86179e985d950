// Package planner turns a target layout into the operations that move the
// live tree towards it.
package planner

import (
	"fmt"
	"log/slog"

	"github.com/nikbrunner/bmr/internal/index"
	"github.com/nikbrunner/bmr/internal/model"
)

// Options configures a planning run.
type Options struct {
	RootParentID string            // default model.DefaultParentID
	NewTempID    model.IDGenerator // default model.NewTempID
	Logger       *slog.Logger
}

// WarningKind classifies recoverable planning conditions.
type WarningKind int

const (
	// WarnParentSubstituted means a level's parent was not a folder and the
	// root parent was used instead.
	WarnParentSubstituted WarningKind = iota
	// WarnNotFound means a target entry matched nothing in the live tree.
	WarnNotFound
	// WarnParentNotFolder means a move was dropped because its destination
	// could not be verified as a folder.
	WarnParentNotFolder
	// WarnSelfParent means a folder was nested under itself in the target.
	WarnSelfParent
)

func (k WarningKind) String() string {
	switch k {
	case WarnParentSubstituted:
		return "parent-substituted"
	case WarnNotFound:
		return "not-found"
	case WarnParentNotFolder:
		return "parent-not-folder"
	case WarnSelfParent:
		return "self-parent"
	default:
		return "unknown"
	}
}

// Warning describes a target entry the planner could not place as written.
type Warning struct {
	Kind     WarningKind `json:"-"`
	Title    string      `json:"title"`
	ParentID string      `json:"parentId"`
	Message  string      `json:"message"`
}

type planner struct {
	idx     index.Index
	root    string
	newTemp model.IDGenerator
	logger  *slog.Logger

	ops      []model.Operation
	warnings []Warning

	folderIDs      map[string]string // folder title -> real or temp id
	knownFolders   map[string]bool
	knownBookmarks map[string]bool
}

// Plan computes the operations that reshape the tree described by idx
// into target. Folders missing from idx are registered in it under
// temporary ids, so idx is modified.
func Plan(idx index.Index, target []*model.StructureNode, opts Options) ([]model.Operation, []Warning) {
	p := &planner{
		idx:            idx,
		root:           opts.RootParentID,
		newTemp:        opts.NewTempID,
		logger:         opts.Logger,
		ops:            []model.Operation{},
		folderIDs:      make(map[string]string),
		knownFolders:   make(map[string]bool),
		knownBookmarks: make(map[string]bool),
	}
	if p.root == "" {
		p.root = model.DefaultParentID
	}
	if p.newTemp == nil {
		p.newTemp = model.NewTempID
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	p.createFolders(target, p.root)
	p.seedKnownIDs()
	p.sequence(target, p.root)

	return p.ops, p.warnings
}

// createFolders is the first pass: every folder gets an id, real or temporary.
func (p *planner) createFolders(nodes []*model.StructureNode, parentID string) {
	for _, n := range nodes {
		if !n.IsFolder() {
			continue
		}

		id := ""
		if e, ok := p.idx.Lookup(n.Title); ok {
			id = e.ID
		} else {
			id = p.newTemp()
			p.ops = append(p.ops, model.CreateFolder{Title: n.Title, ParentID: parentID, TempID: id})
			p.idx.Register(n.Title, index.Entry{ID: id, Title: n.Title, Path: n.Title})
		}
		p.folderIDs[n.Title] = id

		p.createFolders(n.Children, id)
	}
}

func (p *planner) seedKnownIDs() {
	for _, id := range model.ReservedIDs() {
		p.knownFolders[id] = true
	}
	for _, e := range p.idx {
		if e.IsFolder() {
			p.knownFolders[e.ID] = true
		} else {
			p.knownBookmarks[e.ID] = true
		}
	}
}

func (p *planner) isFolder(id string) bool {
	return p.knownFolders[id] && !p.knownBookmarks[id]
}

// sequence is the second pass: place every item at its position.
func (p *planner) sequence(nodes []*model.StructureNode, parentID string) {
	if len(nodes) == 0 {
		return
	}
	if !p.isFolder(parentID) {
		p.warn(WarnParentSubstituted, "", parentID,
			fmt.Sprintf("parent %s is not a folder, using %s", parentID, p.root))
		parentID = p.root
	}

	pos := 0
	for _, n := range nodes {
		if n.IsFolder() {
			id, ok := p.folderIDs[n.Title]
			if !ok {
				e, found := p.idx.Lookup(n.Title)
				if !found {
					p.warn(WarnNotFound, n.Title, parentID, "folder has no id")
					continue
				}
				id = e.ID
			}
			if model.IsReserved(id) {
				// Fixed container: fill it, never move it.
				p.sequence(n.Children, id)
				continue
			}
			if id == parentID {
				p.warn(WarnSelfParent, n.Title, parentID, "folder cannot contain itself")
				continue
			}
			p.ops = append(p.ops, model.Move{
				ID:          id,
				Destination: model.MoveDestination{ParentID: parentID, Index: pos},
			})
			pos++
			p.sequence(n.Children, id)
			continue
		}

		key := index.Key(n.Title, n.URL)
		e, ok := p.idx.Lookup(key)
		if !ok || model.IsReserved(e.ID) {
			p.warn(WarnNotFound, key, parentID, "no bookmark with this title")
			continue
		}
		if !p.isFolder(parentID) {
			p.warn(WarnParentNotFolder, n.Title, parentID, "destination is not a verified folder")
			continue
		}
		p.ops = append(p.ops, model.Move{
			ID:          e.ID,
			Destination: model.MoveDestination{ParentID: parentID, Index: pos},
		})
		pos++
	}
}

func (p *planner) warn(kind WarningKind, title, parentID, msg string) {
	p.warnings = append(p.warnings, Warning{Kind: kind, Title: title, ParentID: parentID, Message: msg})
	p.logger.Warn("planner: "+msg, "kind", kind.String(), "title", title, "parent", parentID)
}
