package odt

import (
	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// parseStyleContainers collects font faces, named styles and list styles
// from office:font-face-decls, office:styles and office:automatic-styles
// children of the document root.
func (d *Document) parseStyleContainers(root *etree.Element, log *zap.Logger) {
	for _, container := range root.ChildElements() {
		switch elementName(container) {
		case "office:font-face-decls":
			for _, el := range container.ChildElements() {
				if elementName(el) == "style:font-face" {
					d.addFontFace(el)
				}
			}
		case "office:styles", "office:automatic-styles":
			for _, el := range container.ChildElements() {
				switch elementName(el) {
				case "style:style":
					d.addStyle(el, log)
				case "text:list-style":
					d.addListStyle(el)
				}
			}
		}
	}
}

func (d *Document) addFontFace(el *etree.Element) {
	f := &FontFace{}
	for _, a := range attrs(el) {
		switch a.Name {
		case "style:name":
			f.Name = a.Value
		case "svg:font-family":
			f.Family = a.Value
		case "style:font-family-generic":
			f.Generic = a.Value
		case "style:font-pitch":
			f.Pitch = a.Value
		}
	}
	if f.Name != "" {
		d.FontFaces[f.Name] = f
	}
}

func (d *Document) addStyle(el *etree.Element, log *zap.Logger) {
	s := &Style{Props: make(map[string]map[string]string)}
	for _, a := range attrs(el) {
		switch a.Name {
		case "style:name":
			s.Name = a.Value
		case "style:display-name":
			s.DisplayName = a.Value
		case "style:family":
			s.Family = a.Value
		case "style:parent-style-name":
			s.Parent = a.Value
		}
	}
	if s.Name == "" {
		log.Debug("Style without name, ignoring")
		return
	}
	for _, group := range el.ChildElements() {
		name := elementName(group)
		props, ok := s.Props[name]
		if !ok {
			props = make(map[string]string)
			s.Props[name] = props
		}
		for _, a := range attrs(group) {
			props[a.Name] = a.Value
		}
	}
	if old, exists := d.Styles[s.Name]; exists && old.Family != s.Family {
		log.Debug("Style redefined with different family",
			zap.String("name", s.Name), zap.String("was", old.Family), zap.String("now", s.Family))
	}
	d.Styles[s.Name] = s
}

func (d *Document) addListStyle(el *etree.Element) {
	ls := &ListStyle{}
	for _, a := range attrs(el) {
		if a.Name == "style:name" {
			ls.Name = a.Value
		}
	}
	if ls.Name == "" {
		return
	}
	for _, level := range el.ChildElements() {
		switch elementName(level) {
		case "text:list-level-style-number":
			ls.Numbered = append(ls.Numbered, true)
		case "text:list-level-style-bullet", "text:list-level-style-image":
			ls.Numbered = append(ls.Numbered, false)
		}
	}
	d.ListStyles[ls.Name] = ls
}
