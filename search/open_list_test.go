package search

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func nodeWith(g int, h float64, robots ...int) *Node {
	n := NewNode(g, robots, "")
	n.H = h
	return n
}

func TestOpenList(t *testing.T) {
	Convey("Given an open list", t, func() {
		ol := NewOpenList()
		So(ol.IsEmpty(), ShouldBeTrue)

		Convey("Duplicate configurations are not added", func() {
			So(ol.Insert(nodeWith(1, 1, 6, 7)), ShouldBeTrue)
			So(ol.Insert(nodeWith(0, 1, 6, 7)), ShouldBeFalse)
			So(ol.Insert(nodeWith(1, 1, 7, 6)), ShouldBeTrue)
			So(ol.Len(), ShouldEqual, 2)
			So(ol.Validate(), ShouldBeNil)
		})

		Convey("ExtractMin returns ascending f and drops membership", func() {
			ol.Insert(nodeWith(5, 0, 1))
			ol.Insert(nodeWith(1, 1, 2))
			ol.Insert(nodeWith(3, 0.5, 3))

			var fs []float64
			for !ol.IsEmpty() {
				n, err := ol.ExtractMin()
				So(err, ShouldBeNil)
				So(ol.Contains(n.Key()), ShouldBeFalse)
				fs = append(fs, n.F())
			}
			So(fs, ShouldResemble, []float64{2, 3.5, 5})
		})

		Convey("Equal f is served in insertion order", func() {
			ol.Insert(nodeWith(2, 0, 9))
			ol.Insert(nodeWith(1, 1, 4))
			ol.Insert(nodeWith(0, 2, 5))
			first, _ := ol.ExtractMin()
			second, _ := ol.ExtractMin()
			third, _ := ol.ExtractMin()
			So(first.Robots, ShouldResemble, []int{9})
			So(second.Robots, ShouldResemble, []int{4})
			So(third.Robots, ShouldResemble, []int{5})
		})

		Convey("Improve only accepts a strictly lower f", func() {
			ol.Insert(nodeWith(4, 0, 1))
			ol.Insert(nodeWith(3, 0, 2))
			So(ol.Improve(nodeWith(4, 0, 1)), ShouldBeFalse)
			So(ol.Improve(nodeWith(1, 0, 1)), ShouldBeTrue)
			So(ol.Improve(nodeWith(0, 0, 8)), ShouldBeFalse)

			got, ok := ol.Get(KeyOf([]int{1}))
			So(ok, ShouldBeTrue)
			So(got.G, ShouldEqual, 1)

			min, err := ol.ExtractMin()
			So(err, ShouldBeNil)
			So(min.Robots, ShouldResemble, []int{1})
			So(ol.Len(), ShouldEqual, 1)
		})

		Convey("Extracting from an empty list is an invariant violation", func() {
			_, err := ol.ExtractMin()
			So(errors.Is(err, ErrInvariant), ShouldBeTrue)
		})
	})
}
