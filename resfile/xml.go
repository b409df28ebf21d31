package resfile

import (
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"
)

// XML returns readable dump of the container. Image data is not included.
func (c *Container) XML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}

	root := doc.CreateElement("resource")
	root.CreateAttr("build", c.BuildID)

	theme := root.CreateElement("theme")
	theme.CreateAttr("name", c.Theme)
	for _, k := range c.Keys() {
		v := c.values[k]
		el := theme.CreateElement("val")
		el.CreateAttr("key", k)
		switch v.Kind {
		case ValueBorder:
			borderXML(el.CreateElement("border"), v.Border)
		case ValueImage:
			el.CreateAttr("image", v.Str)
		default:
			el.CreateAttr("value", v.String())
		}
	}

	for _, id := range c.ImageIDs() {
		img := c.images[id]
		el := root.CreateElement("image")
		el.CreateAttr("name", id)
		if img.Single {
			el.CreateAttr("single", "true")
		}
		for _, vr := range img.Variants {
			d := el.CreateElement("density")
			d.CreateAttr("code", strconv.Itoa(vr.Density))
			d.CreateAttr("format", vr.Format)
			d.CreateAttr("size", fmt.Sprintf("%dx%d", vr.Width, vr.Height))
			d.CreateAttr("bytes", strconv.Itoa(len(vr.Data)))
		}
	}
	return doc
}

func borderXML(el *etree.Element, b *Border) {
	el.CreateAttr("type", b.Type.String())
	switch b.Type {
	case BorderCompound:
		for _, s := range b.Sides {
			borderXML(el.CreateElement("border"), s)
		}
	case BorderImage:
		for _, id := range b.Images {
			el.CreateElement("piece").CreateAttr("image", id)
		}
	default:
		el.CreateAttr("value", b.String())
	}
}

// WriteXML writes indented XML dump.
func (c *Container) WriteXML(w io.Writer) error {
	doc := c.XML()
	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}
