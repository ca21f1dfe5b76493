package mcts

import (
	"bytes"
	"fmt"
	"sort"
	"text/template"

	"github.com/awalterschulze/gographviz"
)

// ToDot renders the tree of the last search in the graphviz dot language. Nodes with fewer than minVisits
// visits are left out.
func (t *MCTS) ToDot(minVisits uint32) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("G"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if !t.root.isValid() {
		return g.String(), nil
	}

	var buf bytes.Buffer
	queue := []naughty{t.root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := t.nodeFromNaughty(id)

		buf.Reset()
		if err := tmpl.Execute(&buf, n); err != nil {
			return "", err
		}
		attrs := map[string]string{
			"fontname": "Monaco",
			"shape":    "none",
			"label":    buf.String(),
		}
		if err := g.AddNode("G", nodeName(id), attrs); err != nil {
			return "", err
		}

		kids := append([]naughty(nil), t.children[id]...)
		sort.Sort(byAction{l: kids, t: t})
		for _, kid := range kids {
			if t.nodeFromNaughty(kid).visits < minVisits {
				continue
			}
			if err := g.AddEdge(nodeName(id), nodeName(kid), true, nil); err != nil {
				return "", err
			}
			queue = append(queue, kid)
		}
	}
	return g.String(), nil
}

func nodeName(n naughty) string { return fmt.Sprintf("n%d", n) }

const tmplRaw = `<
<TABLE BORDER="0" CELLBORDER="1" CELLSPACING="0">
<TR><TD>Node ID</TD><TD>{{.ID}}</TD></TR>
<TR><TD>Action</TD><TD>{{.Action}}</TD></TR>
<TR><TD>Player</TD><TD>{{printf "%v" .Player}}</TD></TR>
<TR><TD>Visits</TD><TD>{{.Visits}}</TD></TR>
<TR><TD>Average</TD><TD>{{printf "%.3f" .Average}}</TD></TR>
</TABLE>
>`

var tmpl = template.Must(template.New("node").Parse(tmplRaw))
